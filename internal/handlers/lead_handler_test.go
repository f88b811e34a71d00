package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vistamar/listings-api/internal/models"
)

func leadRouter(primary *stubProvider) *gin.Engine {
	handler := NewLeadHandler(newAggregator(primary))
	router := gin.New()
	router.POST("/api/v1/leads", handler.Create)
	return router
}

func postLead(router *gin.Engine, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateLeadEndpoint_Success(t *testing.T) {
	var captured models.EnrichedLead
	primary := &stubProvider{
		name: "primary",
		leadFn: func(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error) {
			captured = lead
			return &models.LeadResult{Success: true, LeadID: "lead-42", Message: "created"}, nil
		},
	}

	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1")
	header.Set("Referer", "https://example.com/imovel/ab123?utm_source=google")

	w := postLead(leadRouter(primary), `{
		"name": "Maria Souza",
		"phone": "+55 47 99999-0000",
		"email": "maria@example.com",
		"propertyCode": "AB123",
		"intent": "buy"
	}`, header)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.LeadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "lead-42", resp.LeadID)

	// The handler fills the ambient request fields and the enricher ran.
	assert.Equal(t, "website", captured.Source, "source defaults to website")
	assert.Equal(t, "https://example.com/imovel/ab123?utm_source=google", captured.ReferralURL)
	assert.Equal(t, "google", captured.UTM.Source)
	assert.Equal(t, "mobile", captured.Device)
}

func TestCreateLeadEndpoint_Validation(t *testing.T) {
	router := leadRouter(&stubProvider{name: "primary"})

	t.Run("missing phone", func(t *testing.T) {
		w := postLead(router, `{"name": "Maria Souza"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad intent", func(t *testing.T) {
		w := postLead(router, `{"name": "Maria Souza", "phone": "+55 47 99999-0000", "intent": "sell"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postLead(router, `{`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateLeadEndpoint_RejectedLeadIs422(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		leadFn: func(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error) {
			return &models.LeadResult{Success: false, Errors: []string{"duplicate submission"}}, nil
		},
	}

	w := postLead(leadRouter(primary), `{"name": "Maria Souza", "phone": "+55 47 99999-0000"}`, nil)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp models.LeadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"duplicate submission"}, resp.Errors)
}

func TestCreateLeadEndpoint_UpstreamFailureIs502(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		leadFn: func(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error) {
			return nil, errors.New("primary: create_lead failed with status 500: boom")
		},
	}

	w := postLead(leadRouter(primary), `{"name": "Maria Souza", "phone": "+55 47 99999-0000"}`, nil)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "primary: create_lead failed with status 500: boom", resp["error"]["message"])
}
