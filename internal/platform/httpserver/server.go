// Package httpserver builds the HTTP server with the timeouts every listener uses.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 10 * time.Second
	// Uploads stream whole files, so reads and writes get more headroom than headers.
	readTimeout  = 2 * time.Minute
	writeTimeout = 2 * time.Minute
	idleTimeout  = 90 * time.Second
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
