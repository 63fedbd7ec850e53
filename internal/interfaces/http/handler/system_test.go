package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/erp/salesengine/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantDB     string
	}{
		{name: "database up", db: stubPinger{}, wantStatus: http.StatusOK, wantDB: `"database":"up"`},
		{name: "database down", db: stubPinger{err: errors.New("dial tcp: refused")}, wantStatus: http.StatusServiceUnavailable, wantDB: `"database":"down"`},
		{name: "no database", db: nil, wantStatus: http.StatusOK, wantDB: `"database":"unconfigured"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("sales-engine", "test", tt.db, nil)
			r := newTestEngine()
			r.GET("/health", h.Health)

			w := doJSON(t, r, http.MethodGet, "/health", "", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantDB)
			assert.NotContains(t, w.Body.String(), "refused")
		})
	}
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("sales-engine", "1.2.3", stubPinger{}, nil)
	r := newTestEngine()
	r.GET("/system/info", h.GetSystemInfo)

	w := doJSON(t, r, http.MethodGet, "/system/info", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sales-engine", data["name"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.NotEmpty(t, data["go_version"])
}

func TestSystemHandler_HealthErrorCode(t *testing.T) {
	h := NewSystemHandler("sales-engine", "test", stubPinger{err: errors.New("down")}, nil)
	r := newTestEngine()
	r.GET("/health", h.Health)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
}
