package main

import (
	"net/http"

	"worldgenerator/telemetry"
)

// newStatusMux wires the telemetry websocket endpoint, mirroring the
// teacher's server.go http.HandleFunc("/ws", ...) registration.
func newStatusMux(status *telemetry.StatusServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", status.Handler())
	return mux
}

func serveStatus(addr string, mux *http.ServeMux) error {
	return http.ListenAndServe(addr, mux)
}
