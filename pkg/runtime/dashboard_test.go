// ruleflow/pkg/runtime/dashboard_test.go

package runtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rulehub/ruleflow/pkg/model"
)

func TestNewDashboard(t *testing.T) {
	engine := NewEngine(nil, nil)
	port := 8080
	updateInterval := time.Second

	dashboard := NewDashboard(engine, port, updateInterval)

	assert.NotNil(t, dashboard)
	assert.Equal(t, engine, dashboard.engine)
	assert.Equal(t, port, dashboard.port)
	assert.Equal(t, updateInterval, dashboard.updateInterval)
	assert.NotNil(t, dashboard.clients)
}

func TestHandleHome(t *testing.T) {
	dashboard := NewDashboard(NewEngine(nil, nil), 8080, time.Second)

	req, err := http.NewRequest("GET", "/", nil)
	assert.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(dashboard.handleHome).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Ruleflow Dashboard")
}

func TestHandleStats(t *testing.T) {
	engine := NewEngine(nil, nil)
	engine.Stats.TotalBatches = 3
	engine.Stats.TotalRules = 12

	dashboard := NewDashboard(engine, 8080, time.Second)

	req, err := http.NewRequest("GET", "/api/stats", nil)
	assert.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(dashboard.handleStats).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, float64(3), stats["totalBatches"])
	assert.Equal(t, float64(12), stats["totalRules"])
}

func TestWebSocketReceivesExecutionRecords(t *testing.T) {
	engine := NewEngine(nil, nil)
	dashboard := NewDashboard(engine, 0, time.Hour)

	server := httptest.NewServer(http.HandlerFunc(dashboard.handleWebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server a moment to register the client.
	time.Sleep(50 * time.Millisecond)

	dashboard.broadcastRecord(model.ExecutionRecord{
		RuleID:      "r1",
		ExecutionID: "e1",
		Status:      model.StatusSuccess,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(message, &payload))
	assert.Equal(t, "execution", payload["type"])

	record := payload["record"].(map[string]interface{})
	assert.Equal(t, "r1", record["ruleId"])
	assert.Equal(t, "success", record["status"])
}
