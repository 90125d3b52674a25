package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

type HealthHandler struct {
	startTime time.Time
	version   string
}

type HealthStatus struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Uptime    string        `json:"uptime"`
	System    SystemHealth  `json:"system"`
	Checks    []HealthCheck `json:"checks"`
}

type SystemHealth struct {
	CPUCount   int        `json:"cpuCount"`
	Goroutines int        `json:"goroutines"`
	Memory     MemoryInfo `json:"memory"`
}

type MemoryInfo struct {
	Allocated    uint64  `json:"allocated"`
	TotalAlloc   uint64  `json:"totalAlloc"`
	System       uint64  `json:"system"`
	NumGC        uint32  `json:"numGC"`
	UsagePercent float64 `json:"usagePercent"`
}

type HealthCheck struct {
	Name        string        `json:"name"`
	Status      string        `json:"status"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
	Error       string        `json:"error,omitempty"`
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		version:   version,
	}
}

func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.performHealthCheck()

	w.Header().Set("Content-Type", "application/json")

	if status.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(status)
}

func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	// The analysis pipeline is stateless and has no external
	// dependencies, so readiness mirrors liveness.
	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *HealthHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	version := map[string]interface{}{
		"version": h.version,
		"build_info": map[string]interface{}{
			"go_version": runtime.Version(),
			"go_os":      runtime.GOOS,
			"go_arch":    runtime.GOARCH,
			"compiler":   runtime.Compiler,
		},
		"runtime": map[string]interface{}{
			"uptime":     time.Since(h.startTime).String(),
			"goroutines": runtime.NumGoroutine(),
		},
		"timestamp": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version)
}

func (h *HealthHandler) performHealthCheck() HealthStatus {
	checks := []HealthCheck{
		h.checkMemoryUsage(),
		h.checkGoroutines(),
	}

	overall := "healthy"
	for _, check := range checks {
		if check.Status == "unhealthy" {
			overall = "unhealthy"
			break
		}
		if check.Status == "warning" {
			overall = "degraded"
		}
	}

	return HealthStatus{
		Status:    overall,
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		System:    h.getSystemHealth(),
		Checks:    checks,
	}
}

func (h *HealthHandler) checkMemoryUsage() HealthCheck {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	start := time.Now()

	usagePercent := float64(memStats.Alloc) / float64(memStats.Sys) * 100

	status := "healthy"
	description := "Memory usage within normal limits"
	errorMsg := ""

	if usagePercent > 90 {
		status = "unhealthy"
		description = "High memory usage detected"
		errorMsg = "Memory usage exceeds 90%"
	} else if usagePercent > 75 {
		status = "warning"
		description = "Elevated memory usage"
	}

	return HealthCheck{
		Name:        "memory_usage",
		Status:      status,
		Duration:    time.Since(start),
		Description: description,
		Error:       errorMsg,
	}
}

func (h *HealthHandler) checkGoroutines() HealthCheck {
	start := time.Now()
	goroutineCount := runtime.NumGoroutine()

	status := "healthy"
	description := "Goroutine count within normal limits"
	errorMsg := ""

	if goroutineCount > 10000 {
		status = "unhealthy"
		description = "Very high goroutine count"
		errorMsg = "Potential goroutine leak detected"
	} else if goroutineCount > 1000 {
		status = "warning"
		description = "Elevated goroutine count"
	}

	return HealthCheck{
		Name:        "goroutines",
		Status:      status,
		Duration:    time.Since(start),
		Description: description,
		Error:       errorMsg,
	}
}

func (h *HealthHandler) getSystemHealth() SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SystemHealth{
		CPUCount:   runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryInfo{
			Allocated:    memStats.Alloc,
			TotalAlloc:   memStats.TotalAlloc,
			System:       memStats.Sys,
			NumGC:        memStats.NumGC,
			UsagePercent: float64(memStats.Alloc) / float64(memStats.Sys) * 100,
		},
	}
}
