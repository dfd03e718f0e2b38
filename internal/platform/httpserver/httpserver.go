package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server tuned for the API's short request/response
// operations. Snapshot and history reads are the slowest endpoints and still
// finish well inside the write timeout.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
