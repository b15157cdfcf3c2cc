// Package common contains shared constants and sentinel errors used across
// farmclub components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Reasons attached to InvalidArgument statuses so the client can tell
// validation failures apart.
const (
	ReasonInvalidEmail  = "invalid email"
	ReasonWeakPassword  = "weak password"
	ReasonMissingFields = "missing fields"
	ReasonInvalidRole   = "invalid role"
)
