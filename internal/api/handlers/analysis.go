package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/internal/observability/metrics"
	"github.com/confaudit/confaudit/internal/pipeline"
	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/models"
)

// AnalysisHandler serves the analysis pipeline over HTTP.
type AnalysisHandler struct {
	metrics *metrics.PrometheusMetrics
	logger  *logrus.Logger
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(pm *metrics.PrometheusMetrics, logger *logrus.Logger) *AnalysisHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &AnalysisHandler{metrics: pm, logger: logger}
}

// SourcePayload is one named source in an analysis request. Data is
// base64-encoded raw bytes.
type SourcePayload struct {
	SourceID string `json:"source_id"`
	Kind     string `json:"kind"`
	Data     string `json:"data"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Sources []SourcePayload   `json:"sources"`
	Rules   *models.RuleSet   `json:"rules"`
	Options models.RunOptions `json:"options"`
}

// Analyze runs the full pipeline and returns the quality report.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var request AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if len(request.Sources) == 0 {
		writeError(w, http.StatusBadRequest, "at least one source is required")
		return
	}
	if request.Rules == nil {
		writeError(w, http.StatusBadRequest, "rules configuration is required")
		return
	}

	sources, err := decodeSources(request.Sources)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := pipeline.NewPipeline(&request.Options, h.metrics, h.logger)
	report, err := p.Run(sources, request.Rules)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report.ToMap())
}

// ValidateRequest is the body of POST /api/v1/validate.
type ValidateRequest struct {
	Source  SourcePayload     `json:"source"`
	Rules   *models.RuleSet   `json:"rules"`
	Options models.RunOptions `json:"options"`
}

// Validate runs field validation for a single source without
// reconciliation or scoring.
func (h *AnalysisHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var request ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if request.Rules == nil {
		writeError(w, http.StatusBadRequest, "rules configuration is required")
		return
	}

	sources, err := decodeSources([]SourcePayload{request.Source})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := pipeline.NewPipeline(&request.Options, h.metrics, h.logger)
	violations, err := p.ValidateOnly(sources[0], request.Rules)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"source_id":  request.Source.SourceID,
		"violations": violations,
		"count":      len(violations),
	})
}

func decodeSources(payloads []SourcePayload) ([]models.RawSource, error) {
	sources := make([]models.RawSource, 0, len(payloads))
	for _, payload := range payloads {
		if payload.SourceID == "" {
			return nil, fmt.Errorf("every source needs a source_id")
		}
		data, err := base64.StdEncoding.DecodeString(payload.Data)
		if err != nil {
			return nil, fmt.Errorf("source %s: data is not valid base64: %w", payload.SourceID, err)
		}
		sources = append(sources, models.RawSource{
			SourceID: payload.SourceID,
			Data:     data,
			Kind:     models.SourceKind(payload.Kind),
		})
	}
	return sources, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}

func writeAppError(w http.ResponseWriter, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		writeJSON(w, appErr.HTTPStatus, map[string]interface{}{"error": appErr})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
