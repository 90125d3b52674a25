package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeBody(t *testing.T, sources []SourcePayload, rules map[string]interface{}) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"sources": sources,
		"rules":   rules,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func csvPayload(sourceID, csv string) SourcePayload {
	return SourcePayload{
		SourceID: sourceID,
		Kind:     "tabular",
		Data:     base64.StdEncoding.EncodeToString([]byte(csv)),
	}
}

func TestAnalyzeHandler(t *testing.T) {
	h := NewAnalysisHandler(nil, logrus.New())

	body := analyzeBody(t,
		[]SourcePayload{csvPayload("settings.csv", "setting_name,timeout\nweb,3.5\n")},
		map[string]interface{}{
			"field_rules": map[string]interface{}{
				"setting_name": map[string]interface{}{"required": true, "type": "string"},
				"timeout":      map[string]interface{}{"type": "float", "min": 1, "max": 5},
			},
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, float64(100), report["overall_score"])
	assert.Equal(t, float64(0), report["total_issues"])
	assert.NotEmpty(t, report["id"])
}

func TestAnalyzeHandlerReportsViolations(t *testing.T) {
	h := NewAnalysisHandler(nil, logrus.New())

	body := analyzeBody(t,
		[]SourcePayload{csvPayload("settings.csv", "setting_name,timeout\nweb,6.5\n")},
		map[string]interface{}{
			"field_rules": map[string]interface{}{
				"timeout": map[string]interface{}{"type": "float", "min": 1, "max": 5},
			},
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, float64(92), report["overall_score"])
	assert.Equal(t, float64(1), report["total_issues"])
}

func TestAnalyzeHandlerRejectsMissingRules(t *testing.T) {
	h := NewAnalysisHandler(nil, logrus.New())

	body, _ := json.Marshal(map[string]interface{}{
		"sources": []SourcePayload{csvPayload("a.csv", "x\n1\n")},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandlerRejectsBadBase64(t *testing.T) {
	h := NewAnalysisHandler(nil, logrus.New())

	body := analyzeBody(t,
		[]SourcePayload{{SourceID: "a.csv", Kind: "tabular", Data: "not base64!!!"}},
		map[string]interface{}{"field_rules": map[string]interface{}{}},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandlerRuleConfigError(t *testing.T) {
	h := NewAnalysisHandler(nil, logrus.New())

	body := analyzeBody(t,
		[]SourcePayload{csvPayload("a.csv", "timeout\n3\n")},
		map[string]interface{}{
			"field_rules": map[string]interface{}{
				"timeout": map[string]interface{}{"type": "float", "min": 10, "max": 5},
			},
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response, "error")
}

func TestValidateHandler(t *testing.T) {
	h := NewAnalysisHandler(nil, logrus.New())

	body, err := json.Marshal(map[string]interface{}{
		"source": csvPayload("settings.csv", "env\nstaging\n"),
		"rules": map[string]interface{}{
			"field_rules": map[string]interface{}{
				"env": map[string]interface{}{
					"type":           "string",
					"allowed_values": []string{"production", "development"},
				},
			},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	h.Validate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		SourceID   string                   `json:"source_id"`
		Count      int                      `json:"count"`
		Violations []map[string]interface{} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "settings.csv", response.SourceID)
	require.Equal(t, 1, response.Count)
	assert.Equal(t, "invalid_enum", response.Violations[0]["kind"])
}

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler("0.1.0")

	rec := httptest.NewRecorder()
	h.GetLiveness(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetReadiness(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetVersion(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var version map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, "0.1.0", version["version"])
}
