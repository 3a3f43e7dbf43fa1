package debugserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dekarrin/grouper/output"
)

// statsResponse mirrors pcontext.Stats' report data in a
// client-friendly shape, alongside the rosed-rendered table for
// terminals/logs that just want to print it.
type statsResponse struct {
	RequestID            string   `json:"requestId"`
	Grammar              string   `json:"grammar"`
	Status               string   `json:"status"`
	TotalAttempts        int      `json:"totalAttempts"`
	DeepestFailureOffset int      `json:"deepestFailureOffset"`
	DeepestFailureNames  []string `json:"deepestFailureNames"`
	Report               string   `json:"report"`
}

func (s *Server) handleStats(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	e, ok := s.Registry.get(name)
	if !ok {
		writeJSONError(w, req, http.StatusNotFound, "no grammar registered with that name")
		return
	}

	res, ok := e.lastResult()
	if !ok {
		writeJSONError(w, req, http.StatusNotFound, "grammar has not been parsed with yet")
		return
	}

	offset, names := res.Context.Stats.DeepestFailure()

	writeJSON(w, req, http.StatusOK, statsResponse{
		RequestID:            requestID(req),
		Grammar:              name,
		Status:               res.Status.String(),
		TotalAttempts:        res.Context.Stats.TotalAttempts(),
		DeepestFailureOffset: offset,
		DeepestFailureNames:  names,
		Report:               res.Context.Stats.Report(),
	})
}

func (s *Server) handleLastMatch(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	e, ok := s.Registry.get(name)
	if !ok {
		writeJSONError(w, req, http.StatusNotFound, "no grammar registered with that name")
		return
	}

	res, ok := e.lastResult()
	if !ok {
		writeJSONError(w, req, http.StatusNotFound, "grammar has not been parsed with yet")
		return
	}

	matchJSON, err := output.MarshalJSON(res.Root)
	if err != nil {
		writeJSONError(w, req, http.StatusInternalServerError, "could not marshal match tree: "+err.Error())
		return
	}

	writeJSON(w, req, http.StatusOK, struct {
		RequestID string          `json:"requestId"`
		Grammar   string          `json:"grammar"`
		Status    string          `json:"status"`
		Match     json.RawMessage `json:"match"`
	}{
		RequestID: requestID(req),
		Grammar:   name,
		Status:    res.Status.String(),
		Match:     matchJSON,
	})
}
