package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil retrieval service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Index: &mockIndexService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("nil index service returns error", func(t *testing.T) {
		_, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		assert.ErrorIs(t, err, ErrMissingIndexService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval: &mockRetrievalService{},
			Index:     &mockIndexService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingRetrievalService)
	})

	t.Run("answer is optional", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}, Index: &mockIndexService{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Answer:    &mockAnswerService{},
			Index:     &mockIndexService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Index: &mockIndexService{}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
