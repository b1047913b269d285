package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/logger"
	"codeberg.org/mutker/battdiag/internal/session"
	"codeberg.org/mutker/battdiag/internal/tempdist"
	"github.com/gorilla/mux"
)

func (*Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) devices(w http.ResponseWriter, _ *http.Request) {
	devices := s.src.Devices()
	body := map[string]any{"devices": devices}
	if len(devices) > 0 {
		body["default"] = devices[0]
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	summary := s.src.FetchSummary(r.Context())
	if summary == nil {
		writeError(w, http.StatusBadGateway, "summary unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// dashboard serves the view of one device. Query parameters:
// resolution (5, 10, 15, 20), index (cursor position) and cycle (cycle number,
// fetched on its own when outside the loaded series).
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	device := mux.Vars(r)["device"]
	if !s.allowed(device) {
		writeError(w, http.StatusNotFound, "unknown device")
		return
	}

	q := r.URL.Query()

	res := s.resolution
	if raw := q.Get("resolution"); raw != "" {
		parsed, err := tempdist.ParseResolution(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid resolution")
			return
		}
		res = parsed
	}

	index, hasIndex, ok := intParam(w, q.Get("index"), "index")
	if !ok {
		return
	}
	cycleNumber, hasCycle, ok := intParam(w, q.Get("cycle"), "cycle")
	if !ok {
		return
	}

	v, err := s.viewer()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "viewer unavailable")
		return
	}
	defer v.Close()

	if err := v.SetResolution(res); err != nil {
		writeError(w, http.StatusBadRequest, "invalid resolution")
		return
	}
	if err := v.Select(r.Context(), device); err != nil {
		logger.Warn().Err(err).Str("device", device).Msg("Dashboard selection failed")
		writeError(w, http.StatusInternalServerError, "selection failed")
		return
	}

	if hasIndex {
		v.SetIndex(index)
	}

	if hasCycle {
		view, err := v.Goto(r.Context(), cycleNumber)
		if errors.HasCode(err, session.ErrCycleNotFound) {
			writeError(w, http.StatusNotFound, "cycle not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "cycle lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, view)
		return
	}

	writeJSON(w, http.StatusOK, v.View())
}

func (s *Server) cycleDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	device := vars["device"]
	if !s.allowed(device) {
		writeError(w, http.StatusNotFound, "unknown device")
		return
	}

	n, err := strconv.Atoi(vars["cycle"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cycle")
		return
	}

	rec := s.src.FetchCycleDetails(r.Context(), device, n)
	if rec == nil {
		writeError(w, http.StatusNotFound, "cycle not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device":  device,
		"record":  rec,
		"summary": cycle.Summarize(rec),
	})
}

// intParam parses an optional integer query parameter, answering 400 itself
// when the value is malformed.
func intParam(w http.ResponseWriter, raw, name string) (value int, present, ok bool) {
	if raw == "" {
		return 0, false, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false, false
	}
	return n, true, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
