package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler_Live(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().Live(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHealthHandler_Ready(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]HealthCheck
		status int
		body   string
	}{
		{
			name:   "no checks",
			checks: nil,
			status: http.StatusOK,
			body:   `{"status":"ready","checks":{}}`,
		},
		{
			name:   "all healthy",
			checks: map[string]HealthCheck{"postgres": ok, "redis": ok},
			status: http.StatusOK,
			body:   `{"status":"ready","checks":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name:   "one dependency down",
			checks: map[string]HealthCheck{"postgres": ok, "redis": down},
			status: http.StatusServiceUnavailable,
			body:   `{"status":"unavailable","checks":{"postgres":"ok","redis":"connection refused"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler()
			for name, check := range tt.checks {
				h.AddCheck(name, check)
			}

			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
