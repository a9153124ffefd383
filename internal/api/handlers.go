package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/baxromumarov/job-feed/internal/model"
	"github.com/baxromumarov/job-feed/internal/observability"
)

const (
	cacheHeader = "X-Cache"
	cacheHit    = "HIT"
	cacheMiss   = "MISS"
)

func (s *Server) handleFetchJobs(w http.ResponseWriter, r *http.Request) {
	var params model.FetchJobsParams
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&params); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			// an empty body is validated like an empty object
		case errors.As(err, &tooLarge):
			respondMessage(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		default:
			respondMessage(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}
	}

	if err := params.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, hit, err := s.jobs.Fetch(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if resp.Jobs == nil {
		resp.Jobs = []model.Job{}
	}

	if hit {
		w.Header().Set(cacheHeader, cacheHit)
	} else {
		w.Header().Set(cacheHeader, cacheMiss)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}
