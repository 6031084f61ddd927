// Package cli provides the healthsync command-line client.
//
// The root command loads configuration, opens the local store and the
// configured remote backend, and hands both to the services. Subcommands
// either mutate local data (profile, goal, meal, summary), manage the
// session (login, logout, restore), or drive synchronization (sync, run,
// status). Mutations never wait for the network; "run" keeps the scheduler
// and connectivity monitor alive so pending changes upload on their own.
package cli
