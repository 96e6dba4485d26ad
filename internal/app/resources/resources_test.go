package resources

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetsHandler(t *testing.T) {
	h := AssetsHandler("/assets")

	tests := []struct {
		name string
		path string
		code int
	}{
		{"stylesheet", "/assets/css/app.css", http.StatusOK},
		{"script", "/assets/js/app.js", http.StatusOK},
		{"missing", "/assets/css/nope.css", http.StatusNotFound},
		{"directory", "/assets/css/", http.StatusNotFound},
		{"root", "/assets/", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
				assert.NotEmpty(t, rec.Body.String())
			}
		})
	}
}

func TestLoadSharedTemplatesIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		LoadSharedTemplates()
		LoadSharedTemplates()
	})
}
