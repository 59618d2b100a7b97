package authgate

import (
	goerr "errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// AuthControllerRoutes are the paths the controller mounts.
type AuthControllerRoutes struct {
	Signup         string
	Login          string
	ForgotPassword string
	ResetPassword  string
}

// AuthController exposes the engine as JSON endpoints. Gating
// (Protected / RestrictTo) stays on the RouteAuthenticator; the
// controller only owns the credential lifecycle routes, which are all
// public by design.
type AuthController struct {
	Logger       Logger
	Routes       *AuthControllerRoutes
	Auther       *Auther
	Register     *RegisterUserHandler
	ResetInit    *InitializePasswordResetHandler
	ResetFinal   *FinalizePasswordResetHandler
	ErrorHandler func(c router.Context, err error) error
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signup:         "/signup",
			Login:          "/login",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Register == nil || c.ResetInit == nil || c.ResetFinal == nil {
		panic("Missing command handlers in auth controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = defaultControllerErrHandler
	}

	return c
}

func WithControllerAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerHandlers(register *RegisterUserHandler, init *InitializePasswordResetHandler, final *FinalizePasswordResetHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = register
		c.ResetInit = init
		c.ResetFinal = final
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerErrorHandler(handler func(c router.Context, err error) error) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

// RegisterAuthRoutes mounts the credential lifecycle endpoints.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Signup, controller.SignupPost).
		SetName("auth.signup")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")

	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).
		SetName("auth.forgot-password")

	app.Patch(fmt.Sprintf("%s/:token", controller.Routes.ResetPassword), controller.ResetPasswordPatch).
		SetName("auth.reset-password")
}

// SignupPayload is the registration body
type SignupPayload struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Role            string `form:"role" json:"role"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

// Validate will run validation rules
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(
			&r.PasswordConfirm,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) SignupPost(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	var resp *RegisterUserResponse
	err := a.Register.Execute(ctx.Context(), RegisterUserMessage{
		Name:            payload.Name,
		Email:           payload.Email,
		Role:            payload.Role,
		Password:        payload.Password,
		PasswordConfirm: payload.PasswordConfirm,
		OnResponse: func(r *RegisterUserResponse) {
			resp = r
		},
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, router.ViewContext{
		"status": "success",
		"token":  resp.Token,
		"data": router.ViewContext{
			"user": resp.User,
		},
	})
}

// LoginPayload is the credential body
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	token, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"status": "success",
		"token":  token,
	})
}

// ForgotPasswordPayload carries the account email
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	err := a.ResetInit.Execute(ctx.Context(), InitializePasswordResetMessage{
		Email: payload.Email,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"status":  "success",
		"message": "Token sent to email!",
	})
}

// ResetPasswordPayload carries the new password pair
type ResetPasswordPayload struct {
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
		validation.Field(
			&r.PasswordConfirm,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) ResetPasswordPatch(ctx router.Context) error {
	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	err := a.ResetFinal.Execute(ctx.Context(), FinalizePasswordResetMessage{
		Token:           ctx.Param("token"),
		Password:        payload.Password,
		PasswordConfirm: payload.PasswordConfirm,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"status":  "success",
		"message": "Password has been reset, please log in",
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerr.New("values must match")
		}
		return nil
	}
}

func bindError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse request body").
		WithCode(goerrors.CodeBadRequest)
}

func validationError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithCode(goerrors.CodeBadRequest)
}

func defaultControllerErrHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "an unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	code := HTTPStatus(richErr)

	return c.JSON(code, ErrorResponse{
		Status:   ClassifyStatus(code),
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	})
}
