package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/valveprice/internal/modules/market"
	testingpkg "github.com/aristath/valveprice/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	service := market.NewService(testingpkg.NewStore(t), market.StrategyTrend, 0, logger)
	return NewHandler(service, logger)
}

func TestHandleGetTrend(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
		validate       func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "defaults",
			queryParams:    "",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "trend", data["strategy"])
				assert.Equal(t, "all", data["series"])
				perMonth := data["perMonth"].([]interface{})
				require.Len(t, perMonth, 12)
				dec := perMonth[11].(map[string]interface{})
				assert.Equal(t, 131.2, dec["weightedIndex"])
				yoy := data["yearOverYearChange"].(map[string]interface{})
				assert.Equal(t, 30.0, yoy["cu"])
				assert.Equal(t, 40.0, yoy["sn"])
			},
		},
		{
			name:           "gap strategy on main vendor",
			queryParams:    "?strategy=gap&series=main",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				counts := response["data"].(map[string]interface{})["verdictCounts"].(map[string]interface{})
				assert.Equal(t, 0.0, counts["Good"])
				assert.Equal(t, 7.0, counts["Normal"])
				assert.Equal(t, 5.0, counts["Bad"])
			},
		},
		{
			name:           "vendor breakdown",
			queryParams:    "?vendors=Acme%20Bronze,%20Harbor%20Casting",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				perMonth := response["data"].(map[string]interface{})["perMonth"].([]interface{})
				jan := perMonth[0].(map[string]interface{})["vendorIndices"].(map[string]interface{})
				assert.Equal(t, 100.0, jan["Acme Bronze"])
				assert.Nil(t, jan["Harbor Casting"])
			},
		},
		{"non-numeric lag", "?lag=abc", http.StatusBadRequest, nil},
		{"lag out of range", "?lag=12", http.StatusBadRequest, nil},
		{"unknown strategy", "?strategy=median", http.StatusBadRequest, nil},
		{"unknown series", "?series=Nobody", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/market/trend"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			handler.HandleGetTrend(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validate != nil {
				tt.validate(t, w)
			}
		})
	}
}
