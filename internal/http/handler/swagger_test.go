package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobapi/docs"
)

func TestRegisterSwagger(t *testing.T) {
	app := newTestApp()
	RegisterSwagger(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var spec struct {
		Host  string                    `json:"host"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&spec))
	assert.Empty(t, spec.Host)
	assert.Contains(t, spec.Paths, "/uploads")
	assert.Contains(t, spec.Paths, "/jobs/{jobId}")
}

func TestRegisterSwagger_ConcurrentRequestsLeaveInfoUntouched(t *testing.T) {
	app := newTestApp()
	RegisterSwagger(app)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
			req.Host = "api.example.com"
			req.Header.Set("X-Forwarded-Proto", "https")
			resp, err := app.Test(req)
			if assert.NoError(t, err) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, docs.SwaggerInfo.Host)
	assert.Empty(t, docs.SwaggerInfo.Schemes)
}
