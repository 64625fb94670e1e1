package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/schema"
)

type errorBody struct {
	Error  string      `json:"error"`
	Kind   string      `json:"kind"`
	Field  string      `json:"field,omitempty"`
	Path   string      `json:"path,omitempty"`
	Stderr string      `json:"stderr,omitempty"`
	Errors []errorBody `json:"errors,omitempty"`
}

// classify maps an error to its HTTP status and a stable kind string.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest, "unknown_action"
	case errors.Is(err, domain.ErrInvalidNode):
		return http.StatusBadRequest, "invalid_node"
	case errors.Is(err, domain.ErrShapeMismatch):
		return http.StatusBadRequest, "shape_mismatch"
	case errors.Is(err, domain.ErrInsufficientChannels):
		return http.StatusBadRequest, "insufficient_channels"
	case errors.Is(err, domain.ErrResolution):
		return http.StatusUnprocessableEntity, "resolution"
	case errors.Is(err, domain.ErrProbe):
		return http.StatusUnprocessableEntity, "probe"
	case errors.Is(err, domain.ErrEngine):
		return http.StatusBadGateway, "engine"
	}
	return http.StatusInternalServerError, "internal"
}

func describe(err error) errorBody {
	_, kind := classify(err)
	body := errorBody{Error: err.Error(), Kind: kind}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	var de *schema.DecodeError
	if errors.As(err, &de) {
		body.Path = de.Path
	}
	var ee *domain.EngineError
	if errors.As(err, &ee) {
		body.Stderr = ee.Stderr
	}
	if errs := schema.Errors(err); len(errs) > 1 {
		for _, e := range errs {
			body.Errors = append(body.Errors, describe(e))
		}
	}
	return body
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	}
	respondJSON(w, status, describe(err))
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
