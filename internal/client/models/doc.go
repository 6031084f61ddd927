// Package models defines the client-side records of the health tracker:
// the user profile, goals, meals with their foods, and daily summaries.
//
// Every record carries IsSynced and UpdatedAt. IsSynced=false marks a local
// version not yet confirmed by the remote store; UpdatedAt is the wall-clock
// time of the last local mutation (or the remote value after a restore).
package models
