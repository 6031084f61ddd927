// Package services holds the client application services: tracker
// mutations, the sign-in session and the sync triggers. The CLI talks to
// these; nothing here knows about terminals.
package services
