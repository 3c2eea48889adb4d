// internal/api/server.go
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/engine/trigger"
	"notification-engine/internal/models"
	"notification-engine/internal/validation"
)

// Server exposes the trigger endpoint. It only decodes, validates and
// delegates; all semantics live in the processor.
type Server struct {
	processor *trigger.Processor
	logger    logger.Logger
}

func NewServer(processor *trigger.Processor, log logger.Logger) *Server {
	return &Server{processor: processor, logger: log}
}

// Handler returns the service mux with the trigger, metrics and health routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/events/trigger", s.handleTrigger)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := validation.ValidateTriggerRequest(body); err != nil {
		s.writeStandardError(w, err)
		return
	}

	var event models.TriggerEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "malformed trigger request")
		return
	}

	// Identity comes from the gateway; authentication itself is upstream.
	event.OrganizationID = r.Header.Get("X-Organization-Id")
	event.EnvironmentID = r.Header.Get("X-Environment-Id")
	event.UserID = r.Header.Get("X-User-Id")
	if event.OrganizationID == "" || event.EnvironmentID == "" {
		writeError(w, http.StatusBadRequest, "missing organization or environment identity headers")
		return
	}

	result, err := s.processor.Process(r.Context(), &event)
	if err != nil {
		s.writeStandardError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode trigger response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeStandardError(w http.ResponseWriter, err error) {
	stdErr, ok := err.(*errors.StandardError)
	if !ok {
		s.logger.Error("trigger processing failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case errors.ErrCodeWorkflowNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeTriggerContextInvalid, errors.ErrCodeTriggerPayloadInvalid:
		status = http.StatusBadRequest
	case errors.ErrCodeAttachmentUploadFailed, errors.ErrCodeEnqueueFailed:
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		s.logger.Error("trigger processing failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": stdErr.Message,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    stdErr.Code,
		"message": stdErr.Message,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"message": message})
}
