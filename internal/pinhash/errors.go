package pinhash

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
)

var (
	// ErrInvalidPINFormat is returned when a PIN is not exactly four ASCII digits.
	ErrInvalidPINFormat = fmt.Errorf("pinhash: PIN must be exactly %d digits: %w", common.PINLength, common.ErrInvalidCredentialFormat)

	// ErrMalformedSalt is returned when a stored salt is empty or not valid base64.
	ErrMalformedSalt = fmt.Errorf("pinhash: malformed salt: %w", common.ErrInvalidCredentialFormat)

	// ErrMalformedDigest is returned when a stored digest is not valid base64
	// or does not have the configured length.
	ErrMalformedDigest = fmt.Errorf("pinhash: malformed digest: %w", common.ErrInvalidCredentialFormat)

	// ErrInvalidParams is returned by New for out-of-range parameters.
	ErrInvalidParams = errors.New("pinhash: invalid parameters")
)
