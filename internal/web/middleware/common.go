package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gameaccounts/internal/middleware"
)

// Logging creates logging middleware for the browser routes
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "web")))
}

// RealIP resolves the client address recorded on direct registrations
func RealIP(trustProxy bool) func(http.Handler) http.Handler {
	return middleware.RealIP(trustProxy)
}

// Recovery creates panic recovery middleware for the browser routes
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Error</title></head>
<body>
<h1>Internal Server Error</h1>
<p>Something went wrong. Please try again later.</p>
<p><a href="/login">Back to sign in</a></p>
</body>
</html>`))
}
