package authgate

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// InitializePasswordResetMessage starts a password recovery for the
// given email.
type InitializePasswordResetMessage struct {
	Email      string `json:"email" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// InitializePasswordResetResponse reports the outcome. ExpiresAt is
// zero when the account was not found and the configuration hides
// absence.
type InitializePasswordResetResponse struct {
	Email     string
	ExpiresAt time.Time
	Success   bool
}

// InitializePasswordResetHandler persists a hashed reset token and
// mails the plaintext link. A token must never stay live if the user
// was not notified: mailer failure rolls the pair back before the
// error surfaces.
type InitializePasswordResetHandler struct {
	store     CredentialStore
	mailer    Mailer
	generator *ResetTokenGenerator
	cfg       Config
	logger    Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(store CredentialStore, mailer Mailer, cfg Config) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		store:     store,
		mailer:    mailer,
		generator: NewResetTokenGenerator(cfg.GetResetTokenDuration()),
		cfg:       cfg,
		logger:    defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithGenerator overrides the reset token generator, useful in tests.
func (h *InitializePasswordResetHandler) WithGenerator(g *ResetTokenGenerator) *InitializePasswordResetHandler {
	if g != nil {
		h.generator = g
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	user, err := h.store.FindByEmail(ctx, email)
	if err != nil || user == nil {
		if err != nil && !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		// The enumerable response discloses that the account does not
		// exist, matching the reference behavior. Deployments that
		// prefer a non-enumerable endpoint answer success either way.
		if h.cfg.GetRevealAccountAbsence() {
			return ErrIdentityNotFound
		}

		h.respond(event, &InitializePasswordResetResponse{Email: email, Success: true})
		return nil
	}

	reset, err := h.generator.Generate()
	if err != nil {
		return err
	}

	// hash and expiry land in one call, the pair is never half-written
	expiresAt := reset.ExpiresAt
	if err := h.store.UpdatePasswordFields(ctx, user.ID, PasswordFieldUpdate{
		ResetTokenHash: &reset.Hash,
		ResetExpiresAt: &expiresAt,
	}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist password reset token")
	}

	if err := h.mailer.Send(ctx, h.resetEmail(user, reset)); err != nil {
		h.logger.Error("password reset email delivery failed", "error", err)

		// the request context may be the very reason delivery failed;
		// the rollback still has to land, so it runs detached from the
		// request's cancellation with its own deadline
		rollbackCtx, cancelRollback := context.WithTimeout(context.WithoutCancel(ctx), time.Second*5)
		defer cancelRollback()

		if err2 := h.store.UpdatePasswordFields(rollbackCtx, user.ID, PasswordFieldUpdate{
			ClearResetToken: true,
		}); err2 != nil {
			h.logger.Error("failed to roll back reset token after delivery failure", "error", err2)
			return goerrors.Wrap(err2, goerrors.CategoryInternal, "failed to roll back reset token")
		}

		return ErrDeliveryFailed
	}

	h.respond(event, &InitializePasswordResetResponse{
		Email:     user.Email,
		ExpiresAt: reset.ExpiresAt,
		Success:   true,
	})

	return nil
}

func (h *InitializePasswordResetHandler) respond(event InitializePasswordResetMessage, resp *InitializePasswordResetResponse) {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
}

func (h *InitializePasswordResetHandler) resetEmail(user *User, reset *ResetToken) Email {
	resetURL := fmt.Sprintf(h.cfg.GetResetURLTemplate(), reset.Plaintext)
	window := h.cfg.GetResetTokenDuration()

	body := fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your new password and password confirmation to: %s.\nIf you didn't forget your password, please ignore this email!",
		resetURL,
	)

	return Email{
		To:      user.Email,
		Subject: fmt.Sprintf("Your password reset token (valid for %s)", window),
		Body:    body,
	}
}
