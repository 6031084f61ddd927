// Package remote is the client side of the hierarchical document store the
// sync engine converges with.
//
// Documents live at slash-separated paths that alternate collection and
// document segments ("users/{uid}/meals/{mealId}"). Each document carries a
// flat map of fields. Three DocumentStore backends are provided:
//
//   - GRPCClient talks to the healthsync server over gRPC and attaches the
//     access token to every call.
//   - S3Store keeps one JSON object per document in an S3-compatible bucket.
//   - MemoryStore keeps the tree in process.
//
// Backends map their transport failures onto ErrNotFound, ErrUnavailable and
// ErrUnauthorized so callers can branch with errors.Is. Writes to different
// paths are independent; there is no cross-path atomicity.
package remote
