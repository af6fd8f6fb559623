package server

import (
	"encoding/json"
	stderrors "errors"
	"log"
	"net/http"

	"skillsync/internal/errors"
	"skillsync/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// processJobHandler ranks the submitted CVs against one job description
func (s *Server) processJobHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, r, "Method not allowed", "use POST", "", http.StatusMethodNotAllowed)
		return
	}

	ctx, span := s.om.Tracer("skillsync.api").Start(r.Context(), "api.process_job")
	defer span.End()

	var req types.JobRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "request"))
		writeErrorResponse(w, r, "Invalid request body", err.Error(), errors.ErrCodeInvalidRequest, http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.String("job.id", req.JobID),
		attribute.Int("job.cvs", len(req.CVs)),
		attribute.String("request.id", requestID(ctx)),
	)

	resp, err := s.engine.ProcessJob(ctx, req)
	if err != nil {
		status := statusForError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "job failed")
		span.SetAttributes(attribute.Int("http.status_code", status))
		s.Logger.LogError(err, "Ranking job failed",
			"job_id", req.JobID,
			"status", status,
			"request_id", requestID(ctx))
		writeErrorResponse(w, r, http.StatusText(status), err.Error(), errors.CodeOf(err), status)
		return
	}

	span.SetAttributes(attribute.Int("job.results", len(resp.Results)))
	writeJSON(w, http.StatusOK, resp)
}

// statusForError maps an AppError to the HTTP status returned to the caller
func statusForError(err error) int {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeNetwork:
		if appErr.Code == errors.ErrCodeNetworkTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.ErrorTypeAI:
		return http.StatusBadGateway
	case errors.ErrorTypeInternal:
		if appErr.Code == errors.ErrCodeJobCancelled {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
