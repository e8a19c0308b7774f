package core

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of them so callers can branch
// on the class with errors.Is.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

var (
	ErrMissingSecret   = fmt.Errorf("%w: private key is required", ErrBadRequest)
	ErrInvalidSecret   = fmt.Errorf("%w: private key is invalid", ErrBadRequest)
	ErrMissingUsername = fmt.Errorf("%w: username is required", ErrBadRequest)
	ErrInvalidAddress  = fmt.Errorf("%w: invalid wallet address", ErrBadRequest)
	ErrInvalidRole     = fmt.Errorf("%w: invalid role", ErrBadRequest)
	ErrInvalidStatus   = fmt.Errorf("%w: invalid status", ErrBadRequest)
	ErrEmptyUpdate     = fmt.Errorf("%w: nothing to update", ErrBadRequest)

	ErrMissingTransactionField = fmt.Errorf("%w: txHash, from, to and type are required", ErrBadRequest)
	ErrInvalidTxStatus         = fmt.Errorf("%w: invalid transaction status", ErrBadRequest)

	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrTokenExpired       = fmt.Errorf("%w: token has expired", ErrUnauthorized)
	ErrMissingToken       = fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	ErrAccountNotFound    = fmt.Errorf("%w: no account for this wallet", ErrUnauthorized)
	ErrSecretMismatch     = fmt.Errorf("%w: private key does not match", ErrUnauthorized)
	ErrInvalidSignature   = fmt.Errorf("%w: invalid signature", ErrUnauthorized)
	ErrMalformedSignature = fmt.Errorf("%w: malformed signature", ErrUnauthorized)
	ErrNonceMismatch      = fmt.Errorf("%w: nonce mismatch", ErrUnauthorized)

	ErrAccountInactive      = fmt.Errorf("%w: account is inactive", ErrForbidden)
	ErrRoleNotPermitted     = fmt.Errorf("%w: role is not permitted", ErrForbidden)
	ErrTrustedLoginDisabled = fmt.Errorf("%w: address-only login is disabled", ErrForbidden)
	ErrAdminStatusLocked    = fmt.Errorf("%w: status of an admin cannot be changed", ErrForbidden)
	ErrForeignSender        = fmt.Errorf("%w: transaction sender must be the caller", ErrForbidden)

	ErrDuplicateIdentity    = fmt.Errorf("%w: wallet address already registered", ErrConflict)
	ErrDuplicateTransaction = fmt.Errorf("%w: transaction already exists", ErrConflict)

	ErrPrincipalNotFound   = fmt.Errorf("%w: principal not found", ErrNotFound)
	ErrNonceNotFound       = fmt.Errorf("%w: nonce not found", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("%w: transaction not found", ErrNotFound)

	ErrCustodialFailed = fmt.Errorf("%w: custodial wallet service failed", ErrUpstreamUnavailable)
)
