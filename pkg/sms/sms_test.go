package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewaySenderPostsForm(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"apikey":  r.PostFormValue("apikey"),
			"sender":  r.PostFormValue("sender"),
			"to":      r.PostFormValue("to"),
			"message": r.PostFormValue("message"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewGatewaySender(GatewayConfig{
		BaseURL:  server.URL,
		APIKey:   "test-key",
		SenderID: "TRAFIC",
		Timeout:  2 * time.Second,
	})

	err := sender.Send(context.Background(), "9876543210", "Traffic fine of Rs.1000 issued")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotForm["apikey"])
	assert.Equal(t, "TRAFIC", gotForm["sender"])
	assert.Equal(t, "9876543210", gotForm["to"])
	assert.Equal(t, "Traffic fine of Rs.1000 issued", gotForm["message"])
}

func TestGatewaySenderNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewGatewaySender(GatewayConfig{BaseURL: server.URL})

	err := sender.Send(context.Background(), "9876543210", "hello")
	assert.ErrorContains(t, err, "502")
}

func TestGatewaySenderUnreachableGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	sender := NewGatewaySender(GatewayConfig{BaseURL: server.URL})

	err := sender.Send(context.Background(), "9876543210", "hello")
	assert.Error(t, err)
}

func TestGatewaySenderHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	sender := NewGatewaySender(GatewayConfig{BaseURL: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := sender.Send(ctx, "9876543210", "hello")
	assert.Error(t, err)
}
