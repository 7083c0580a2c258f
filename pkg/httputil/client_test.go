package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockpick/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(logger.NewNop(), 5*time.Second)
	require.NotNil(t, client)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.logger)
}

func TestGetSendsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "stockpick-test", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(logger.NewNop(), time.Second).WithUserAgent("stockpick-test")

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"test","value":123}`))
	}))
	defer server.Close()

	client := New(logger.NewNop(), time.Second)

	var got struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &got))
	assert.Equal(t, "test", got.Name)
	assert.Equal(t, 123, got.Value)
}

func TestGetJSONNoRetryOn5xx(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(logger.NewNop(), time.Second)

	var dest map[string]interface{}
	err := client.GetJSON(context.Background(), server.URL, &dest)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, 1, attempts, "requests must not be retried")
}

func TestGetJSONDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := New(logger.NewNop(), time.Second)

	var dest map[string]interface{}
	assert.Error(t, client.GetJSON(context.Background(), server.URL, &dest))
}

func TestIsThrottled(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{404, false},
		{429, true},
		{503, false},
	}

	for _, tt := range tests {
		if got := IsThrottled(tt.statusCode); got != tt.want {
			t.Errorf("IsThrottled(%d) = %v, want %v", tt.statusCode, got, tt.want)
		}
	}
}
