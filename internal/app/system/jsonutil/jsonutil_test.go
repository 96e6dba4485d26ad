package jsonutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantBody   string
	}{
		{
			name:       "200 OK with data",
			status:     http.StatusOK,
			data:       map[string]string{"message": "hello"},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"hello"}`,
		},
		{
			name:       "201 Created with data",
			status:     http.StatusCreated,
			data:       map[string]string{"path": "docs"},
			wantStatus: http.StatusCreated,
			wantBody:   `{"path":"docs"}`,
		},
		{
			name:       "nil data",
			status:     http.StatusOK,
			data:       nil,
			wantStatus: http.StatusOK,
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSON(rec, tt.status, tt.data)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			body := strings.TrimSpace(rec.Body.String())
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "m") }, http.StatusBadRequest},
		{"conflict", func(w http.ResponseWriter) { Error(w, http.StatusConflict, "m") }, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"error":"m"}`, rec.Body.String())
		})
	}
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"name": "required"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "required", body.Fields["name"])
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", fserr.NotFound("stat", "docs/a.txt"), http.StatusNotFound, "docs/a.txt was not found."},
		{"conflict", fserr.Conflict("rename", "docs/b.txt"), http.StatusConflict, "docs/b.txt already exists."},
		{"escape", fserr.PathEscape("list", "../etc"), http.StatusBadRequest, ""},
		{"unclassified", assert.AnError, http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["error"])
			}
			assert.NotContains(t, body["error"], "assert.AnError")
		})
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		Path string `json:"path"`
		Kind string `json:"kind"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"path":"docs","kind":"folder"}`))
	require.NoError(t, Decode(req, &v))
	assert.Equal(t, "docs", v.Path)
	assert.Equal(t, "folder", v.Kind)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	assert.Error(t, Decode(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"path":"a"} {"path":"b"}`))
	assert.Error(t, Decode(req, &v), "trailing values are rejected")

	huge := `{"path":"` + strings.Repeat("x", MaxBody) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(huge))
	assert.Error(t, Decode(req, &v), "oversized bodies are rejected")
}
