package authgate

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
	goerrors "github.com/goliatone/go-errors"
)

// SMTPMailer delivers over SMTPS using a preset from address.
type SMTPMailer struct {
	client      *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds a mailer for the given host credentials. Empty
// credentials disable delivery, which keeps dev setups working without
// an SMTP server.
func NewSMTPMailer(host, user, password, fromAddress string, skipVerify bool) (*SMTPMailer, error) {
	if host == "" || user == "" || password == "" {
		return &SMTPMailer{disabled: true}, nil
	}

	u, err := url.Parse(fmt.Sprintf("smtps://%v:%v@%v", user, password, host))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid smtp host")
	}

	from, err := mail.ParseAddress(fromAddress)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid from address")
	}

	tlsConfig := &tls.Config{}
	if skipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	client, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize smtp client")
	}

	return &SMTPMailer{
		client:      client,
		mailName:    from.Name,
		mailAddress: from.Address,
	}, nil
}

// Send delivers the message. Delivery runs in a goroutine bounded by
// the caller's context so a stalled SMTP conversation surfaces as a
// delivery failure instead of hanging the request.
func (m *SMTPMailer) Send(ctx context.Context, em Email) error {
	if m.disabled {
		return nil
	}

	msg := goemail.NewMessage(m.mailAddress, em.Subject, em.Body)
	msg.SetName(m.mailName)
	msg.AddTo(em.To)

	done := make(chan error, 1)
	go func() {
		done <- m.client.Send(msg)
	}()

	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "email delivery timed out")
	case err := <-done:
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "email delivery failed")
		}
		return nil
	}
}

// LogMailer prints recovery links instead of delivering them. Use it
// in development only, the plaintext token ends up in the process log.
type LogMailer struct {
	Logger Logger
}

var _ Mailer = (*LogMailer)(nil)

func (m LogMailer) Send(_ context.Context, em Email) error {
	logger := m.Logger
	if logger == nil {
		logger = defLogger{}
	}

	logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	logger.Info("to: %s", em.To)
	logger.Info("subject: %s", em.Subject)
	logger.Info("%s", em.Body)
	return nil
}
