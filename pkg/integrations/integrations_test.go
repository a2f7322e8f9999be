// ruleflow/pkg/integrations/integrations_test.go

package integrations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookClientPostsPayload(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewWebhookClient(0)
	result := client.Call(context.Background(), server.URL, "post", map[string]string{"orderId": "o1"})

	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "o1", gotBody["orderId"])
	assert.Contains(t, result.Data["body"], "ok")
}

func TestWebhookClientReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWebhookClient(0)
	result := client.Call(context.Background(), server.URL, "POST", nil)

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.NotEmpty(t, result.Error)
}

// A timed-out call is a normal failed result, never a panic or batch fault.
func TestWebhookClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewWebhookClient(50 * time.Millisecond)
	result := client.Call(context.Background(), server.URL, "GET", nil)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestWebhookClientBadURL(t *testing.T) {
	client := NewWebhookClient(0)
	result := client.Call(context.Background(), "http://127.0.0.1:1/unreachable", "POST", nil)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestHTTPSMSGateway(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	gateway := NewHTTPSMSGateway(server.URL, "secret", "+15550000", 0)
	result := gateway.SendSMS(context.Background(), "+15550100", "big order")

	assert.True(t, result.Success)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "+15550100", gotBody["to"])
	assert.Equal(t, "big order", gotBody["message"])
	assert.Equal(t, "+15550000", gotBody["from"])
}

func TestHTTPSMSGatewayProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	gateway := NewHTTPSMSGateway(server.URL, "", "", 0)
	result := gateway.SendSMS(context.Background(), "+15550100", "hi")

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, redis.NewClient(&redis.Options{Addr: s.Addr()})
}

func TestRedisDatabaseWriter(t *testing.T) {
	s, client := setupRedis(t)
	writer := NewRedisDatabaseWriter(client)
	ctx := context.Background()

	result := writer.Execute(ctx, "orders", "update", map[string]string{"id": "o1", "status": "flagged"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "flagged", s.HGet("orders:o1", "status"))

	result = writer.Execute(ctx, "orders", "insert", map[string]string{"status": "new"})
	require.True(t, result.Success, result.Error)

	result = writer.Execute(ctx, "orders", "delete", map[string]string{"id": "o1"})
	require.True(t, result.Success, result.Error)
	assert.False(t, s.Exists("orders:o1"))

	result = writer.Execute(ctx, "orders", "truncate", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported database operation")

	result = writer.Execute(ctx, "orders", "update", map[string]string{"status": "x"})
	assert.False(t, result.Success)
}

func TestRedisNotificationPublisher(t *testing.T) {
	s, client := setupRedis(t)
	publisher := NewRedisNotificationPublisher(client)

	result := publisher.Publish(context.Background(), "", "rule fired")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, DefaultNotificationChannel, result.Data["channel"])

	items, err := s.List("notifications:" + DefaultNotificationChannel)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "rule fired")
}
