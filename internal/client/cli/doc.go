// Package cli implements pinctl, a one-shot command line front end for the
// Verification API.
//
// Commands
//
//	verify         prompt for the PIN without echo and request a step-up grant
//	status         show lockout status for the signed-in session
//	grant <token>  check whether a step-up grant is still valid
//	ping           check that the server is serving
package cli
