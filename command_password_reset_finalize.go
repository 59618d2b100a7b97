package authgate

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// FinalizePasswordResetMessage consumes a recovery token and sets a
// new password.
type FinalizePasswordResetMessage struct {
	Token           string `json:"token" doc:"Plaintext reset token from the recovery link"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

// FinalizePasswordResetHandler matches the hashed token against the
// store, rotates the password, and clears the pair. Setting
// passwordChangedAt retroactively invalidates every outstanding access
// token; clearing the pair in the same update makes consumption
// exactly once.
type FinalizePasswordResetHandler struct {
	store  CredentialStore
	hasher PasswordAuthenticator
	policy PasswordPolicy
	logger Logger
	now    func() time.Time
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(store CredentialStore, cfg Config) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		store:  store,
		hasher: NewBcryptHasher(cfg.GetPasswordCost()),
		policy: cfg.GetPasswordPolicy(),
		logger: defLogger{},
		now:    time.Now,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock injects a custom clock, useful in tests.
func (h *FinalizePasswordResetHandler) WithClock(clock func() time.Time) *FinalizePasswordResetHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Token == "" {
		return ErrResetTokenInvalid
	}

	if event.Password != event.PasswordConfirm {
		return goerrors.New("passwords do not match", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := h.policy.Validate(event.Password); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "password does not meet the strength policy").
			WithCode(goerrors.CodeBadRequest)
	}

	user, err := h.store.FindByResetTokenHash(ctx, HashResetToken(event.Token))
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrResetTokenInvalid
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve password reset request")
	}

	now := h.now()
	if user == nil || !user.HasLiveResetToken(now) {
		return ErrResetTokenInvalid
	}

	passwordHash, err := h.hasher.HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	// one atomic update: rotate the hash, stamp the change, clear the
	// pair so the token can never succeed twice
	changedAt := now
	if err := h.store.UpdatePasswordFields(ctx, user.ID, PasswordFieldUpdate{
		PasswordHash:      &passwordHash,
		PasswordChangedAt: &changedAt,
		ClearResetToken:   true,
	}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
	}

	return nil
}
