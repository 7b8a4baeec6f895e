package castlegate

import (
	"net/http"

	"github.com/castlegate/castlegate/middleware/gateware"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the account API. The sign-out and access probe
// routes sit behind the gate; sign-up and sign-in do not.
func RegisterAuthRoutes[T any](app router.Router[T], controller *AuthController, gate router.MiddlewareFunc) {
	app.Get(controller.Routes.Dummy, controller.Dummy).SetName("auth.dummy")
	app.Post(controller.Routes.SignUp, controller.SignUp).SetName("auth.sign-up")
	app.Post(controller.Routes.SignIn, controller.SignIn).SetName("auth.sign-in")
	app.Post(controller.Routes.SignOut, controller.SignOut, gate).SetName("auth.sign-out")
	app.Post(controller.Routes.Access, controller.Access, gate).SetName("auth.access")
}

type AuthControllerRoutes struct {
	Dummy   string
	SignUp  string
	SignIn  string
	SignOut string
	Access  string
}

type AuthController struct {
	Logger       Logger
	Repo         RepositoryManager
	Verifier     *CredentialVerifier
	Sessions     *SessionManager
	Registrar    *RegisterAccountHandler
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: WriteError,
		Routes: &AuthControllerRoutes{
			Dummy:   "/auth/dummy",
			SignUp:  "/auth/signUp",
			SignIn:  "/auth/signIn",
			SignOut: "/auth/signOut",
			Access:  "/auth/access",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Verifier == nil {
		panic("Missing CredentialVerifier in auth controller...")
	}

	if c.Sessions == nil {
		panic("Missing SessionManager in auth controller...")
	}

	if c.Registrar == nil {
		panic("Missing RegisterAccountHandler in auth controller...")
	}

	return c
}

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = l
		return c
	}
}

func WithRepositoryManager(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithCredentialVerifier(v *CredentialVerifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Verifier = v
		return c
	}
}

func WithSessionManager(m *SessionManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Sessions = m
		return c
	}
}

func WithRegistrar(h *RegisterAccountHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Registrar = h
		return c
	}
}

// SignUpRequest payload
type SignUpRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			validation.Length(5, 0),
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 0),
		),
	)
}

// SignInRequest payload
type SignInRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// Dummy is the liveness probe.
func (a *AuthController) Dummy(ctx router.Context) error {
	return ctx.Status(http.StatusTeapot).SendString("")
}

// SignUp creates the account and issues its first session token. The token
// travels back in the x-auth response header, the body only carries the
// account ID.
func (a *AuthController) SignUp(ctx router.Context) error {
	payload := new(SignUpRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("SignUp payload bind failed: %v", err)
		return a.ErrorHandler(ctx, ErrValidationFailed)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, ErrValidationFailed.Clone().WithMetadata(map[string]any{
			"validation": err.Error(),
		}))
	}

	account, err := a.Registrar.Register(ctx.Context(), RegisterAccountMessage{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		a.Logger.Error("SignUp registration failed: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	token, err := a.Sessions.Issue(ctx.Context(), account, clientAgent(ctx), true)
	if err != nil {
		a.Logger.Error("SignUp session issuance failed: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	ctx.SetHeader(HeaderAuthToken, token)
	return ctx.JSON(http.StatusCreated, map[string]any{
		"authId": account.ID,
	})
}

// SignIn verifies credentials and issues a fresh token for the calling
// agent, replacing that agent's previous session.
func (a *AuthController) SignIn(ctx router.Context) error {
	payload := new(SignInRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("SignIn payload bind failed: %v", err)
		return a.ErrorHandler(ctx, ErrValidationFailed)
	}

	if err := payload.Validate(); err != nil {
		// a malformed sign-in still reads as a failed login
		return a.ErrorHandler(ctx, ErrLoginFailed)
	}

	account, err := a.Verifier.Verify(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	token, err := a.Sessions.Issue(ctx.Context(), account, clientAgent(ctx), true)
	if err != nil {
		a.Logger.Error("SignIn session issuance failed: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	ctx.SetHeader(HeaderAuthToken, token)
	return ctx.JSON(http.StatusOK, map[string]any{
		"authId": account.ID,
	})
}

// SignOut revokes the presented token. Runs behind the gate, so the account
// and token are already attached.
func (a *AuthController) SignOut(ctx router.Context) error {
	account, ok := AccountFromRouter(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, gateware.ErrTokenRequired)
	}

	token, _ := TokenFromRouter(ctx, "")

	if err := a.Sessions.Revoke(ctx.Context(), account, token); err != nil {
		a.Logger.Error("SignOut revocation failed: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Status(http.StatusOK).SendString("")
}

// Access is the authenticated probe: it bumps the last access timestamp and
// echoes the account ID.
func (a *AuthController) Access(ctx router.Context) error {
	account, ok := AccountFromRouter(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, gateware.ErrTokenRequired)
	}

	account.TouchAccess()
	if _, err := a.Repo.Accounts().Save(ctx.Context(), account); err != nil {
		a.Logger.Error("Access timestamp save failed: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"authId": account.ID,
	})
}

func clientAgent(ctx router.Context) string {
	if agent := ctx.Header("User-Agent"); agent != "" {
		return agent
	}
	return "unknown"
}
