package worker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vibe-gaming/notes/internal/config"
	emailProvider "github.com/vibe-gaming/notes/pkg/email"
)

const verificationSubject = "Your verification code"

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
	}
}

type verificationEmailInput struct {
	VerificationCode string
}

func (s *emailSender) SendUserVerificationEmail(_ context.Context, email string, verificationCode string) error {
	templateInput := verificationEmailInput{verificationCode}
	sendInput := emailProvider.SendEmailInput{Subject: verificationSubject, To: email}

	templatePath := filepath.Join(s.config.Templates.Dir, s.config.Templates.Verification)
	if err := sendInput.GenerateBodyFromHTML(templatePath, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}
