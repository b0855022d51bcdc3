package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Write timeout stays above the router's request
// timeout so in-flight responses are never cut off mid-body.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
