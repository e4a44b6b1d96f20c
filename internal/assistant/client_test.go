package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteWithoutAPIKey(t *testing.T) {
	c := NewClient("http://localhost:0", "", "test-model")
	_, err := c.Complete(context.Background(), NewSession(nil, "", "hi"))
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.NotEmpty(t, req.Messages)
		assert.Equal(t, "system", req.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "you have 3 late payments"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", "test-model")
	reply, err := c.Complete(context.Background(), NewSession(nil, "", "any late payments?"))
	require.NoError(t, err)
	assert.Equal(t, "you have 3 late payments", reply)
}

func TestCompleteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", "test-model")
	_, err := c.Complete(context.Background(), NewSession(nil, "", "hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", "test-model")
	_, err := c.Complete(context.Background(), NewSession(nil, "", "hi"))
	assert.Error(t, err)
}
