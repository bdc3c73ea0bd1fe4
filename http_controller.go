package auth

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Authenticator is what the HTTP layer needs from the orchestrator.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
	Register(ctx context.Context, username, password, role string) (*AuthResponse, error)
}

var _ Authenticator = (*Auther)(nil)

type AuthControllerRoutes struct {
	Login           string
	Register        string
	AdminCreateUser string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Auther Authenticator
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = resolveLogger(logger)
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger(),
		Routes: &AuthControllerRoutes{
			Login:           "/auth/login",
			Register:        "/auth/register",
			AdminCreateUser: "/auth/admin/create-user",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints. adminGuard runs before the
// admin user creation handler; a nil guard closes the route.
func RegisterAuthRoutes[T any](app router.Router[T], controller *AuthController, adminGuard router.MiddlewareFunc) {
	if adminGuard == nil {
		adminGuard = denyAll
	}

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("auth.register.post")

	app.Post(controller.Routes.AdminCreateUser, controller.AdminCreateUser, adminGuard).
		SetName("auth.admin.create-user.post")
}

func denyAll(router.HandlerFunc) router.HandlerFunc {
	return func(router.Context) error {
		return ErrForbidden
	}
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 128)),
	)
}

// RegisterRequest payload
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

// Normalize trims the username and upper cases the role.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(3, 64),
			is.PrintableASCII,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, MaxPasswordBytes),
			validation.By(maxBytes(MaxPasswordBytes)),
		),
		validation.Field(
			&r.Role,
			validation.In(RoleUser.String(), RoleAdmin.String()),
		),
	)
}

// maxBytes limits the encoded length of a string. validation.Length counts
// runes, bcrypt counts bytes.
func maxBytes(limit int) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if len(s) > limit {
			return fmt.Errorf("must be at most %d bytes", limit)
		}
		return nil
	}
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := bindPayload(ctx, payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	if a.Debug {
		a.Logger.Debug("auth login", "username", payload.Username)
	}

	res, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		return err
	}

	return ctx.JSON(router.StatusOK, res)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	return a.register(ctx, "register")
}

func (a *AuthController) AdminCreateUser(ctx router.Context) error {
	return a.register(ctx, "admin.create-user")
}

func (a *AuthController) register(ctx router.Context, source string) error {
	payload := new(RegisterRequest)

	if err := bindPayload(ctx, payload); err != nil {
		return err
	}

	payload.Normalize()

	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	if a.Debug {
		a.Logger.Debug("auth "+source,
			"payload", print.MaybePrettyJSON(map[string]any{
				"username": payload.Username,
				"role":     payload.Role,
			}),
		)
	}

	res, err := a.Auther.Register(ctx.Context(), payload.Username, payload.Password, payload.Role)
	if err != nil {
		return err
	}

	return ctx.JSON(router.StatusOK, res)
}

// CurrentPrincipal renders the principal bound to the request.
func (a *AuthController) CurrentPrincipal(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx.Context())
	if !ok {
		return ErrUnauthorized
	}
	return ctx.JSON(router.StatusOK, principal)
}

func bindPayload(ctx router.Context, payload any) error {
	if err := ctx.Bind(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithTextCode(TextCodeValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func validationError(err error) error {
	if fieldErrs, ok := err.(validation.Errors); ok {
		return NewValidationError(fieldErrs)
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "request validation failed").
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest)
}
