package smtp

import (
	"testing"

	"github.com/vibe-gaming/notes/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender_InvalidFrom(t *testing.T) {
	_, err := NewSMTPSender("", "pass", "localhost", 587)
	require.Error(t, err)
}

func TestSMTPSender_Send_RejectsInvalidInput(t *testing.T) {
	s, err := NewSMTPSender("noreply@example.com", "pass", "localhost", 587)
	require.NoError(t, err)

	err = s.Send(email.SendEmailInput{To: "not-an-email", Subject: "s", Body: "b"})
	assert.EqualError(t, err, "invalid to email")
}
