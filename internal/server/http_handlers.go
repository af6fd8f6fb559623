package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// Certificates expiring sooner than this report unhealthy, then warning
const (
	certCriticalThreshold = 24 * time.Hour
	certWarningThreshold  = 7 * 24 * time.Hour
)

// healthHandler reports embedding model, breaker, classifier and certificate state.
// It answers 503 when the model is unreachable or the certificate is about to expire.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, r, "Method not allowed", "use GET", "", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "skillsync",
		"version": s.Version,
	}
	healthy := true

	if s.models != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.modelCheckTimeout())
		info := s.models.GetModelInfo(ctx)
		cancel()
		response["embedding_model"] = info
		response["circuit_breaker"] = s.models.CircuitBreakerStats()
		if info == nil || !info.Available {
			healthy = false
		}
	}

	response["classifier"] = s.classifierStatus()

	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if ok, _ := certStatus["healthy"].(bool); !ok {
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func (s *Server) modelCheckTimeout() time.Duration {
	if s.AppConfig != nil && s.AppConfig.Observability.HealthCheck.ModelCheckTimeout > 0 {
		return s.AppConfig.Observability.HealthCheck.ModelCheckTimeout
	}
	return 10 * time.Second
}

// classifierStatus describes the loaded artifact. Its absence is not a failure.
func (s *Server) classifierStatus() map[string]any {
	if s.classifier == nil {
		return map[string]any{"loaded": false, "scoring": "similarity_only"}
	}
	artifact := s.classifier.Artifact()
	return map[string]any{
		"loaded":          true,
		"scoring":         "blended",
		"source":          s.classifier.Source(),
		"kind":            artifact.Kind,
		"version":         artifact.Version,
		"embedding_model": artifact.EmbeddingModel,
		"trained_at":      artifact.TrainedAt,
	}
}

// checkCertificateHealth grades the time left on the serving certificate
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	certStatus := map[string]any{
		"reload": s.CertificateManager.Status(),
	}

	remaining, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = err.Error()
		return certStatus
	}

	certStatus["time_to_expiry"] = remaining.Round(time.Second).String()
	certStatus["time_to_expiry_hours"] = int(remaining.Hours())

	switch {
	case remaining <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
	case remaining <= certCriticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
	case remaining <= certWarningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
	}
	return certStatus
}

// statsHandler reports rate limiting and ranking engine settings
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, r, "Method not allowed", "use GET", "", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "skillsync",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"auth_enabled":           len(s.APIKeys) > 0,
			"tls_mode":               s.TLSConfig.Mode,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.engine != nil {
		response["engine"] = s.engine.Describe()
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest decodes a single JSON document from the request body into v
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, title, message, code string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     title,
		Message:   message,
		Code:      code,
		RequestID: requestID(r.Context()),
	})
}
