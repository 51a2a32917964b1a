package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBodyFromHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.html")
	require.NoError(t, os.WriteFile(path, []byte(`<p>{{.VerificationCode}}</p>`), 0o600))

	input := SendEmailInput{To: "jane@example.com", Subject: "code"}
	require.NoError(t, input.GenerateBodyFromHTML(path, struct{ VerificationCode string }{"482913"}))
	assert.Equal(t, "<p>482913</p>", input.Body)
	assert.NoError(t, input.Validate())
}

func TestGenerateBodyFromHTML_MissingTemplate(t *testing.T) {
	input := SendEmailInput{}
	require.Error(t, input.GenerateBodyFromHTML(filepath.Join(t.TempDir(), "missing.html"), nil))
}

func TestSendEmailInput_Validate(t *testing.T) {
	tests := []struct {
		name  string
		input SendEmailInput
	}{
		{"empty to", SendEmailInput{Subject: "s", Body: "b"}},
		{"empty body", SendEmailInput{To: "jane@example.com", Subject: "s"}},
		{"invalid to", SendEmailInput{To: "jane", Subject: "s", Body: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.input.Validate())
		})
	}
}

func TestIsEmailValid(t *testing.T) {
	assert.True(t, IsEmailValid("jane.doe+notes@example.co.uk"))
	assert.False(t, IsEmailValid("jane@"))
	assert.False(t, IsEmailValid("@example.com"))
	assert.False(t, IsEmailValid("jane example@example.com"))
}
