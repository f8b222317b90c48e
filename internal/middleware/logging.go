package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// responseTap records what the handler wrote so the request line can
// report status and payload size.
type responseTap struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (t *responseTap) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTap) Write(p []byte) (int, error) {
	n, err := t.ResponseWriter.Write(p)
	t.bytes += n
	return n, err
}

// RequestLogger emits one line per request. Client errors log at warn
// and server errors at error so the interesting lines stand out under
// the default info level.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tap := &responseTap{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(tap, r)

			level := slog.LevelInfo
			switch {
			case tap.status >= 500:
				level = slog.LevelError
			case tap.status >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", tap.status),
				slog.Int("bytes", tap.bytes),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("remote", RealIP(r)),
			)
		})
	}
}
