// Package models holds the server-side persistence types.
package models

import "time"

// Document is one node of the remote document tree. Parent is the
// collection path the document lives in and Owner the uid of the users/{uid}
// subtree it belongs to.
type Document struct {
	Path      string
	Parent    string
	Owner     string
	Fields    map[string]any
	UpdatedAt time.Time
}
