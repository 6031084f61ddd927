// Package common contains shared constants and sentinel errors used across
// healthsync components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Metadata keys persisted in the client's local metadata table.
const (
	MetaSignedInUser = "signed_in_uid"
	MetaLastUploadAt = "last_upload_at"
	MetaLastRestore  = "last_restore_at"
)
