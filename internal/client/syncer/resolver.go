package syncer

import (
	"fmt"
	"strings"
	"time"
)

type Direction int

const (
	Upload Direction = iota
	Download
)

func (d Direction) String() string {
	if d == Download {
		return "download"
	}
	return "upload"
}

type Winner int

const (
	LocalWins Winner = iota
	RemoteWins
)

// Version is what a Resolver sees of one side of a record.
type Version struct {
	ID        string
	UpdatedAt time.Time
	Exists    bool
}

// Resolver decides which copy of a record survives a sync step.
type Resolver interface {
	// Compares reports whether Resolve looks at versions at all. When false
	// the pipelines skip fetching the other side.
	Compares() bool
	Resolve(dir Direction, local, remote Version) Winner
}

// OverwriteResolver lets the side being copied from win unconditionally:
// uploads push the local copy, downloads replace it. UpdatedAt is ignored.
type OverwriteResolver struct{}

func (OverwriteResolver) Compares() bool { return false }

func (OverwriteResolver) Resolve(dir Direction, _, _ Version) Winner {
	if dir == Download {
		return RemoteWins
	}
	return LocalWins
}

// NewestWinsResolver keeps the copy with the later UpdatedAt. A missing side
// always loses; ties fall back to overwrite.
type NewestWinsResolver struct{}

func (NewestWinsResolver) Compares() bool { return true }

func (NewestWinsResolver) Resolve(dir Direction, local, remote Version) Winner {
	switch {
	case !remote.Exists:
		return LocalWins
	case !local.Exists:
		return RemoteWins
	case local.UpdatedAt.After(remote.UpdatedAt):
		return LocalWins
	case remote.UpdatedAt.After(local.UpdatedAt):
		return RemoteWins
	default:
		return OverwriteResolver{}.Resolve(dir, local, remote)
	}
}

const (
	PolicyOverwrite = "overwrite"
	PolicyNewest    = "newest"
)

// ResolverByName maps a config value to a Resolver.
func ResolverByName(name string) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyOverwrite:
		return OverwriteResolver{}, nil
	case PolicyNewest:
		return NewestWinsResolver{}, nil
	default:
		return nil, fmt.Errorf("unknown conflict policy %q", name)
	}
}
