package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mlisboa17/assistente-pessoal/internal/api/handlers"
	"github.com/mlisboa17/assistente-pessoal/internal/categorizer"
	"github.com/stretchr/testify/assert"
)

func TestNewMux_Health(t *testing.T) {
	mux := NewMux(Routes{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNewMux_UnregisteredGroups(t *testing.T) {
	mux := NewMux(Routes{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewMux_MethodMismatch(t *testing.T) {
	mux := NewMux(Routes{Tools: handlers.NewToolsHandler(categorizer.Default())})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categorize", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"text":"almoço no restaurante"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/categorize", body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"`)
}
