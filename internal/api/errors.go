package api

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/baxromumarov/job-feed/internal/model"
)

const internalErrorMessage = "Internal Server Error"

type errorBody struct {
	Error string `json:"error"`
	Stack string `json:"stack,omitempty"`
}

// writeError maps err onto a status code and body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		respondMessage(w, http.StatusBadRequest, ve.Message)
		return
	}

	message := internalErrorMessage
	if errors.Is(err, model.ErrAggregationFailed) {
		message = model.ErrAggregationFailed.Error()
	}

	s.logger.Error("request failed",
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)

	if !s.dev {
		respondError(w, http.StatusInternalServerError, message)
		return
	}
	respondJSON(w, http.StatusInternalServerError, errorBody{
		Error: message,
		Stack: err.Error() + "\n" + string(debug.Stack()),
	})
}

// recoverer turns a panic into a JSON 500 instead of chi's plain-text one.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			stack := debug.Stack()
			s.logger.Error("panic recovered",
				"request_id", middleware.GetReqID(r.Context()),
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(stack),
			)

			body := errorBody{Error: internalErrorMessage}
			if s.dev {
				body.Stack = string(stack)
			}
			respondJSON(w, http.StatusInternalServerError, body)
		}()
		next.ServeHTTP(w, r)
	})
}
