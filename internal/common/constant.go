// Package common contains shared constants and sentinel errors used across
// pinkeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key that carries the primary
// session access token issued by the identity provider.
const AccessTokenHeaderName = "access_token"

// PINLength is the number of decimal digits in a step-up PIN.
const PINLength = 4
