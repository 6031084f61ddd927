package cli

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/spf13/cobra"
)

func newRunCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Keep syncing in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.app.Run(cmd.Context())
		},
	}
}

func newSyncCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload pending changes now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := st.uid(cmd.Context()); err != nil {
				return err
			}
			rep, err := st.app.sync.SyncNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d, deleted %d, pulled %d, failed %d\n",
				rep.Uploaded, rep.Deleted, rep.Pulled, rep.Failed)
			if rep.Failed > 0 {
				return fmt.Errorf("%d records failed to upload", rep.Failed)
			}
			return nil
		},
	}
}

func newRestoreCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Replace local data with the cloud copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := st.uid(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.app.sync.Restore(cmd.Context(), uid); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "restored", uid)
			return nil
		},
	}
}

func newStatusCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session, pending changes and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			uid, err := st.uid(ctx)
			if err != nil {
				fmt.Fprintln(out, "signed in: no")
				return nil
			}
			pending, err := st.app.tracker.PendingCount(ctx, uid)
			if err != nil {
				return err
			}
			meta := st.app.store.Repos().Metadata
			lastUpload, err := meta.GetTime(ctx, common.MetaLastUploadAt)
			if err != nil {
				return err
			}
			lastRestore, err := meta.GetTime(ctx, common.MetaLastRestore)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "signed in:", uid)
			fmt.Fprintln(out, "pending:", pending)
			fmt.Fprintln(out, "last upload:", formatTime(lastUpload))
			fmt.Fprintln(out, "last restore:", formatTime(lastRestore))
			fmt.Fprintln(out, "network:", st.app.probe.Probe(ctx))
			return nil
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

func newLoginCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "login <uid>",
		Short: "Sign in and restore the account's cloud data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.app.session.SignIn(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed in as", args[0])
			return nil
		},
	}
}

func newLogoutCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; local data is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.app.session.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
