package authgate

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Middleware is the produced gate surface for the routing layer:
// Protected must run before any role-restricted operation, RestrictTo
// only ever after Protected.
type Middleware interface {
	Protected() router.MiddlewareFunc
	RestrictTo(roles ...UserRole) router.MiddlewareFunc
}

// RouteAuthenticator adapts the engine to a router: it runs the
// verification gate on the Authorization header and turns engine
// errors into structured JSON responses.
type RouteAuthenticator struct {
	auth         *Auther
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

var _ Middleware = (*RouteAuthenticator)(nil)

func NewHTTPAuthenticator(auther *Auther, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

// Protected is the verification gate. On success the resolved
// AuthContext rides both the router locals and the request context; on
// failure the chain short-circuits with a 401.
func (a *RouteAuthenticator) Protected() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			actx, err := a.auth.Authenticate(c.Context(), c.Header("Authorization"))
			if err != nil {
				return a.ErrorHandler(c, err)
			}

			c.Locals(a.contextKey(), actx)
			c.SetContext(WithContext(c.Context(), actx))

			return hf(c)
		}
	}
}

// RestrictTo gates a route on role membership. A missing AuthContext
// means Protected never ran, which is a 401, not a 403.
func (a *RouteAuthenticator) RestrictTo(roles ...UserRole) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			actx, ok := c.Locals(a.contextKey()).(*AuthContext)
			if !ok || actx == nil {
				return a.ErrorHandler(c, ErrNoAuthToken)
			}

			if err := a.auth.Authorize(actx, roles...); err != nil {
				return a.ErrorHandler(c, err)
			}

			return hf(c)
		}
	}
}

// GetAuthContext pulls the verified AuthContext a Protected gate left
// on the router context.
func GetAuthContext(c router.Context, key string) (*AuthContext, bool) {
	if key == "" {
		key = "user"
	}
	actx, ok := c.Locals(key).(*AuthContext)
	return actx, ok && actx != nil
}

func (a *RouteAuthenticator) contextKey() string {
	if key := a.cfg.GetContextKey(); key != "" {
		return key
	}
	return "user"
}

// defaultErrHandler renders the structured error payload: the status
// class is "fail" for client faults and "error" for server faults, and
// the body never carries hashes, secrets, or stack traces.
func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "an unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	code := HTTPStatus(richErr)

	a.Logger.Info(
		"Request rejected",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.JSON(code, ErrorResponse{
		Status:   ClassifyStatus(code),
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	})
}

// ErrorResponse is the structured error payload.
type ErrorResponse struct {
	Status   StatusClass `json:"status"`
	Message  string      `json:"message"`
	TextCode string      `json:"code,omitempty"`
}
