// Package pinhash derives and checks salted digests of 4-digit step-up PINs.
//
// Digests are PBKDF2-HMAC-SHA256 outputs, stored together with a random
// per-credential salt; both travel as standard base64 text. The derivation
// is deliberately slow (100 000 iterations by default) and runs on a bounded
// pool so that concurrent verifications cannot starve the host.
//
//	h, err := pinhash.New(pinhash.DefaultParams())
//	digest, salt, err := h.Hash(ctx, "0719")
//	ok, err := h.Verify(ctx, "0719", digest, salt)
//
// Format problems (a PIN that is not four decimal digits, a salt or digest
// that does not decode) are reported as errors wrapping
// common.ErrInvalidCredentialFormat, never as a failed comparison.
package pinhash
