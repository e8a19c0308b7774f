package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

// errorClasses maps each error class to its status code
var errorClasses = []struct {
	class  error
	status int
}{
	{core.ErrBadRequest, http.StatusBadRequest},
	{core.ErrUnauthorized, http.StatusUnauthorized},
	{core.ErrForbidden, http.StatusForbidden},
	{core.ErrNotFound, http.StatusNotFound},
	{core.ErrConflict, http.StatusConflict},
	{core.ErrUpstreamUnavailable, http.StatusBadGateway},
}

// knownErrors are the specific errors whose text is safe to show to clients
var knownErrors = []error{
	core.ErrMissingSecret,
	core.ErrInvalidSecret,
	core.ErrMissingUsername,
	core.ErrInvalidAddress,
	core.ErrInvalidRole,
	core.ErrInvalidStatus,
	core.ErrEmptyUpdate,
	core.ErrMissingTransactionField,
	core.ErrInvalidTxStatus,
	core.ErrTokenExpired,
	core.ErrInvalidToken,
	core.ErrMissingToken,
	core.ErrAccountNotFound,
	core.ErrSecretMismatch,
	core.ErrInvalidSignature,
	core.ErrMalformedSignature,
	core.ErrNonceMismatch,
	core.ErrAccountInactive,
	core.ErrRoleNotPermitted,
	core.ErrTrustedLoginDisabled,
	core.ErrAdminStatusLocked,
	core.ErrForeignSender,
	core.ErrDuplicateIdentity,
	core.ErrDuplicateTransaction,
	core.ErrPrincipalNotFound,
	core.ErrNonceNotFound,
	core.ErrTransactionNotFound,
	core.ErrCustodialFailed,
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// classify returns the status code and client-facing message for err. Unknown errors map to
// a generic 500.
func classify(err error) (int, string) {
	for _, ec := range errorClasses {
		if !errors.Is(err, ec.class) {
			continue
		}
		for _, known := range knownErrors {
			if errors.Is(err, known) {
				return ec.status, strings.TrimPrefix(known.Error(), ec.class.Error()+": ")
			}
		}
		return ec.status, ec.class.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// abortWithError writes the error response and stops the handler chain
func abortWithError(c *gin.Context, log zerolog.Logger, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.Writer.Header().Get(requestIDHeader)).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Success: false, Message: message})
}
