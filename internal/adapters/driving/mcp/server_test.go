package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil meeting service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingMeetingService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Meetings: &mockMeetingService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestServerInstructions(t *testing.T) {
	// Every advertised tool and resource must appear in the
	// initialization instructions, or clients get a stale capability
	// list when the surface changes.
	for _, want := range []string{
		"list_meetings",
		"get_status",
		"get_analysis",
		"minute://meetings",
		"minute://meetings/{meetingId}/transcript",
	} {
		assert.Contains(t, serverInstructions, want)
	}
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil meeting service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingMeetingService)
	})

	t.Run("meetings only is valid", func(t *testing.T) {
		ports := &Ports{
			Meetings: &mockMeetingService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Meetings: &mockMeetingService{},
			Pipeline: &mockPipelineOrchestrator{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}
