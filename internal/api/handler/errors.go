package handler

import (
	"errors"
	"net/http"
	"strings"

	"mentorlink/backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

func statusFor(code string) int {
	switch code {
	case apperr.CodeAuthenticationRequired:
		return http.StatusUnauthorized
	case apperr.CodeForbidden, apperr.CodeNotParticipant, apperr.CodeAccessDenied:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeInvalidState, apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body for err. Unclassified errors are
// attached to the context for the request logger and reported generically.
func respondError(c *gin.Context, err error) {
	code := apperr.Code(err)
	status := statusFor(code)
	msg := "internal server error"
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	} else {
		msg = publicMessage(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

// publicMessage drops the sentinel prefix ("not found: user 3" -> "user 3")
// unless the error is the bare sentinel.
func publicMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		apperr.ErrValidation, apperr.ErrNotFound, apperr.ErrInvalidState,
		apperr.ErrConflict, apperr.ErrForbidden, apperr.ErrAuthenticationRequired,
	} {
		if !errors.Is(err, sentinel) {
			continue
		}
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
