// Package models defines the records exchanged between the step-up core and
// its stores.
package models

// Credential is the step-up PIN material of one principal as kept by the
// profile store. Both fields are standard base64.
type Credential struct {
	PrincipalID string
	SecretHash  string
	Salt        string
}

// Configured reports whether the credential carries both a digest and a salt.
// Anything else is treated as "no PIN set"; there is no plaintext fallback.
func (c *Credential) Configured() bool {
	return c != nil && c.SecretHash != "" && c.Salt != ""
}
