package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/devices", s.devices).Methods(http.MethodGet)
	r.HandleFunc("/summary", s.summary).Methods(http.MethodGet)
	r.HandleFunc("/devices/{device}/dashboard", s.dashboard).Methods(http.MethodGet)
	r.HandleFunc("/devices/{device}/cycles/{cycle:-?[0-9]+}", s.cycleDetails).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return r
}
