package main

import (
	"io"
	"net/http"
	"time"
)

// StartMockServer runs a small target server for the demo and returns its
// address. Call this before submitting requests.
//
// The routes are a subset of `fetchq mock` (see cmd/fetchq), kept dependency
// free so the example stays a two-file program.
func StartMockServer(addr string) string {
	mux := http.NewServeMux()

	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok from example mock\n"))
	})

	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		delay := 2 * time.Second
		if raw := r.URL.Query().Get("delay"); raw != "" {
			if parsed, err := time.ParseDuration(raw); err == nil {
				delay = parsed
			}
		}
		select {
		case <-time.After(delay):
			_, _ = w.Write([]byte("finally\n"))
		case <-r.Context().Done():
		}
	})

	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("X-Echo-Method", r.Method)
		_, _ = w.Write(body)
	})

	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()

	return "localhost" + addr
}
