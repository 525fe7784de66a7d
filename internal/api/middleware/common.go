package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gameaccounts/internal/api/apierr"
	"github.com/mcoot/gameaccounts/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "api")))
}

// RealIP resolves the client address for handlers that record it
func RealIP(trustProxy bool) func(http.Handler) http.Handler {
	return middleware.RealIP(trustProxy)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
