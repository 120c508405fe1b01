// Package client talks to the pinkeeper Verification API on behalf of a
// signed-in session.
//
// GRPCClient attaches the session's access token to every call and maps
// gRPC status codes to the sentinel errors in errors.go, so callers can use
// errors.Is without importing grpc/status.
package client
