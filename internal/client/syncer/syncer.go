// Package syncer moves records between the local store and the remote
// document tree. UploadAll pushes dirty rows and marks them clean;
// DownloadAll restores a user's whole tree inside one local transaction.
package syncer

import (
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/client/store"
	"github.com/dmitrijs2005/healthsync/internal/logging"
)

type Syncer struct {
	store    *store.Store
	remote   remote.DocumentStore
	resolver Resolver
	logger   logging.Logger
	now      func() time.Time
}

type Option func(*Syncer)

func WithResolver(r Resolver) Option {
	return func(s *Syncer) { s.resolver = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

func New(st *store.Store, rs remote.DocumentStore, l logging.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		store:    st,
		remote:   rs,
		resolver: OverwriteResolver{},
		logger:   l.With("module", "syncer"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
