package authgate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authgate "github.com/goliatone/go-authgate"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.lines = append(l.lines, msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.lines = append(l.lines, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.lines = append(l.lines, msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.lines = append(l.lines, msg) }

func TestSMTPMailerConfiguration(t *testing.T) {
	t.Run("empty credentials disable delivery", func(t *testing.T) {
		mailer, err := authgate.NewSMTPMailer("", "", "", "", false)
		require.NoError(t, err)

		// a disabled mailer swallows sends instead of failing them
		assert.NoError(t, mailer.Send(context.Background(), authgate.Email{
			To:      "ada@example.com",
			Subject: "hi",
			Body:    "body",
		}))
	})

	t.Run("a bad from address is rejected at construction", func(t *testing.T) {
		_, err := authgate.NewSMTPMailer("smtp.example.com:465", "user", "password", "not an address", false)
		assert.Error(t, err)
	})
}

func TestLogMailer(t *testing.T) {
	logger := &recordingLogger{}
	mailer := authgate.LogMailer{Logger: logger}

	require.NoError(t, mailer.Send(context.Background(), authgate.Email{
		To:      "ada@example.com",
		Subject: "Your password reset token",
		Body:    "the link",
	}))

	assert.NotEmpty(t, logger.lines)
}
