package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	Addr    string
	APIKey  string       // empty disables auth on /mcp
	Metrics http.Handler // mounted at /metrics when set
}

// ServeHTTP starts the MCP server over HTTP with optional Bearer token auth.
// It shuts down gracefully when ctx is cancelled.
func ServeHTTP(ctx context.Context, opts HTTPOptions, ranker Ranker, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      newHTTPHandler(opts, ranker),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("trustrank MCP HTTP server listening", zap.String("addr", opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func newHTTPHandler(opts HTTPOptions, ranker Ranker) http.Handler {
	httpServer := server.NewStreamableHTTPServer(newServer(ranker), server.WithStateLess(true))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	var mcpHandler http.Handler = httpServer
	if opts.APIKey != "" {
		mcpHandler = bearerAuth(opts.APIKey, httpServer)
	}
	mux.Handle("/mcp", mcpHandler)

	return mux
}

func bearerAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
