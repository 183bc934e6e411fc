package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil session service returns error", func(t *testing.T) {
		ports := &Ports{Chat: &mockChatService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSessionService)
	})

	t.Run("nil chat service returns error", func(t *testing.T) {
		ports := &Ports{Session: &mockSessionService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingChatService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Session: &mockSessionService{},
			Chat:    &mockChatService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("session and chat only is valid", func(t *testing.T) {
		ports := &Ports{
			Session: &mockSessionService{},
			Chat:    &mockChatService{},
		}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Session: &mockSessionService{},
			Chat:    &mockChatService{},
			Summary: &mockSummaryService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
