package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPConfig_Complete(t *testing.T) {
	full := SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "bot",
		Password: "secret",
		From:     "bot@example.com",
		To:       "owner@example.com",
	}
	assert.True(t, full.Complete())

	missingHost := full
	missingHost.Host = ""
	assert.False(t, missingHost.Complete())

	missingPort := full
	missingPort.Port = 0
	assert.False(t, missingPort.Complete())

	missingTo := full
	missingTo.To = ""
	assert.False(t, missingTo.Complete())

	assert.False(t, SMTPConfig{}.Complete())
}

func TestSMTPNotifier_SkipsOnIncompleteConfig(t *testing.T) {
	// No host configured: the send is skipped, never attempted, never an error.
	n := NewSMTP(SMTPConfig{To: "owner@example.com"})

	err := n.Send(context.Background(), Escalation{
		ConversationID: "c1",
		VisitorMessage: "I want to talk to a human",
		RequestedAt:    time.Now(),
	})
	require.NoError(t, err)
}

func TestNoop(t *testing.T) {
	err := Noop{}.Send(context.Background(), Escalation{ConversationID: "c1"})
	assert.NoError(t, err)
}
