package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/healthsync/internal/client/config"
	"github.com/dmitrijs2005/healthsync/internal/filex"
	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/spf13/cobra"
)

// state is shared by the subcommands of one invocation.
type state struct {
	cfg    *config.Config
	logger logging.Logger
	app    *App
}

// NewRootCommand creates the root command. cfg holds the values loaded
// from defaults, the environment and the JSON file; flags override them.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	st := &state{cfg: cfg}

	cmd := &cobra.Command{
		Use:           "healthsync",
		Short:         "healthsync - offline-first health tracker",
		Long:          "Track meals, goals and daily summaries locally and keep them in sync with the cloud.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := st.cfg.Validate(); err != nil {
				return err
			}
			if err := filex.EnsureParentDir(st.cfg.LogFile); err != nil {
				return err
			}
			st.logger = logging.New(logging.Options{
				Level:  st.cfg.LogLevel,
				Format: st.cfg.LogFormat,
				File:   st.cfg.LogFile,
			})
			app, err := NewApp(cmd.Context(), st.cfg, st.logger)
			if err != nil {
				return err
			}
			st.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if st.app == nil {
				return nil
			}
			return st.app.Close()
		},
	}
	config.BindFlags(cmd.PersistentFlags(), cfg)

	cmd.AddCommand(newRunCommand(st))
	cmd.AddCommand(newSyncCommand(st))
	cmd.AddCommand(newRestoreCommand(st))
	cmd.AddCommand(newStatusCommand(st))
	cmd.AddCommand(newLoginCommand(st))
	cmd.AddCommand(newLogoutCommand(st))
	cmd.AddCommand(newProfileCommand(st))
	cmd.AddCommand(newGoalCommand(st))
	cmd.AddCommand(newMealCommand(st))
	cmd.AddCommand(newSummaryCommand(st))

	return cmd
}

// Execute runs the command tree against os.Args and exits non-zero on error.
func Execute() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := NewRootCommand(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// uid returns the signed-in user or a readable error.
func (s *state) uid(ctx context.Context) (string, error) {
	uid, err := s.app.session.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w (run \"healthsync login <uid>\" first)", err)
	}
	return uid, nil
}
