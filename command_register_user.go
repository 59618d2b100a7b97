package authgate

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// RegisterUserMessage is the signup draft.
type RegisterUserMessage struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	UseHashid       bool
	OnResponse      func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserResponse carries the created identity and its first
// access token back to the caller.
type RegisterUserResponse struct {
	User  *User
	Token string
}

// RegisterUserHandler executes signups: derive the hash, persist the
// identity, issue the first token. Email uniqueness is the store's
// problem; the handler never pre-checks.
type RegisterUserHandler struct {
	store  CredentialStore
	hasher PasswordAuthenticator
	tokens TokenService
	policy PasswordPolicy
	logger Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(store CredentialStore, tokens TokenService, cfg Config) *RegisterUserHandler {
	return &RegisterUserHandler{
		store:  store,
		hasher: NewBcryptHasher(cfg.GetPasswordCost()),
		tokens: tokens,
		policy: cfg.GetPasswordPolicy(),
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithHasher overrides the password hasher.
func (h *RegisterUserHandler) WithHasher(hasher PasswordAuthenticator) *RegisterUserHandler {
	if hasher != nil {
		h.hasher = hasher
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Email == "" {
		return goerrors.New("email is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if event.Password != event.PasswordConfirm {
		return goerrors.New("passwords do not match", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := h.policy.Validate(event.Password); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "password does not meet the strength policy").
			WithCode(goerrors.CodeBadRequest)
	}

	role := event.Role
	if role == "" {
		role = DefaultRole()
	}
	if _, ok := ParseRole(role); !ok {
		return goerrors.New("unknown role", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"role": event.Role})
	}

	hash, err := h.hasher.HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Name:         event.Name,
		Email:        NormalizeEmail(event.Email),
		Role:         role,
		PasswordHash: hash,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	created, err := h.store.Insert(ctx, user)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	token, err := h.tokens.Generate(AsIdentity(created))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue access token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{User: created, Token: token})
	}

	return nil
}
