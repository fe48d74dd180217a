package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/SscSPs/koperasi_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgInternal     = "Terjadi kesalahan pada server"
	msgUnauthorized = "Unauthorized"
)

// RegisterValidators installs the custom binding tags used by the DTOs on gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return v.RegisterValidation("workflow_decision", func(fl validator.FieldLevel) bool {
		return domain.Decision(fl.Field().String()).IsValid()
	})
}

// statusFor maps the error kinds used by the services to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrDuplicate): // ErrConflict wraps ErrDuplicate
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status its kind maps to. Only domain messages reach the client.
func respondError(c *gin.Context, err error, op string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": msgInternal})
		return
	}
	logger.Warn(op+" rejected", slog.Int("status", status), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": apperrors.UserMessage(err, http.StatusText(status))})
}

// badRequest reports a binding failure.
func badRequest(c *gin.Context, err error, op string) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request for "+op, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}

// actorFromContext returns the authenticated caller, or writes 401 and false.
func actorFromContext(c *gin.Context) (domain.Actor, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: userID, Roles: middleware.GetRolesFromContext(c)}, true
}

// pathID returns the named path parameter if it parses as a UUID. Anything else
// cannot name a stored row, so notFound is written and false returned.
func pathID(c *gin.Context, name string, notFound error, op string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, notFound, op)
		return "", false
	}
	return id, true
}
