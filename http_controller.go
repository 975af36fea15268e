package identity

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// AuthControllerRoutes holds the paths the controller mounts its handlers
// on.
type AuthControllerRoutes struct {
	Activate string
	Token    string
	Recover  string
	Reset    string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Workflow *Workflow
	Routes   *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerWorkflow sets the workflow the controller drives.
func WithControllerWorkflow(w *Workflow) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Workflow = w
		return c
	}
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = l
		return c
	}
}

// WithControllerDebug enables request payload dumps.
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// WithControllerRoutes overrides the default route paths.
func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Activate: "/auth/activate",
			Token:    "/auth/token",
			Recover:  "/auth/recover",
			Reset:    "/auth/reset",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Workflow == nil {
		panic("Missing Workflow in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the credential lifecycle endpoints.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Activate, controller.ActivatePost).
		SetName("auth-activate.post")

	app.Post(controller.Routes.Token, controller.TokenPost).
		SetName("auth-token.post")

	app.Post(controller.Routes.Recover, controller.RecoverPost).
		SetName("auth-recover.post")

	app.Post(controller.Routes.Reset, controller.ResetPost).
		SetName("auth-reset.post")
}

// ActivatePayload carries an activation code and the chosen password.
type ActivatePayload struct {
	Code     string `form:"code" json:"code"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r ActivatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) ActivatePost(ctx router.Context) error {
	payload := new(ActivatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("activate parse payload: %v", err)
		return writeBindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return writePayloadErrors(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH ACTIVATE ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	if _, err := a.Workflow.Activate(ctx.Context(), payload.Code, payload.Password); err != nil {
		return a.writeError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{"ok": true})
}

// TokenPayload carries the login credentials.
type TokenPayload struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r TokenPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) TokenPost(ctx router.Context) error {
	payload := new(TokenPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("token parse payload: %v", err)
		return writeBindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return writePayloadErrors(ctx, err)
	}

	result, err := a.Workflow.CreateToken(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		return a.writeError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, result)
}

// RecoverPayload carries the address a recovery code is requested for.
type RecoverPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r RecoverPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) RecoverPost(ctx router.Context) error {
	payload := new(RecoverPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("recover parse payload: %v", err)
		return writeBindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return writePayloadErrors(ctx, err)
	}

	if err := a.Workflow.RequestPasswordReset(ctx.Context(), payload.Email); err != nil {
		return a.writeError(ctx, err)
	}

	// Unknown addresses get the same response as known ones.
	return ctx.JSON(fiber.StatusOK, map[string]any{"ok": true})
}

// ResetPayload carries a recovery code and the replacement password.
type ResetPayload struct {
	Code     string `form:"code" json:"code"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r ResetPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) ResetPost(ctx router.Context) error {
	payload := new(ResetPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("reset parse payload: %v", err)
		return writeBindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return writePayloadErrors(ctx, err)
	}

	if _, err := a.Workflow.CompletePasswordReset(ctx.Context(), payload.Code, payload.Password); err != nil {
		return a.writeError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{"ok": true})
}

func (a *AuthController) writeError(ctx router.Context, err error) error {
	status := statusFromError(err)

	body := map[string]any{
		"error": err.Error(),
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.TextCode != "" {
			body["code"] = richErr.TextCode
		}
		if reasons := ValidationReasons(err); len(reasons) > 0 {
			body["reasons"] = reasons
		}
	}

	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed: %v", err)
	}

	return ctx.JSON(status, body)
}

func statusFromError(err error) int {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return fiber.StatusInternalServerError
	}

	switch richErr.Category {
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryValidation:
		return fiber.StatusUnprocessableEntity
	case goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func writeBindError(ctx router.Context, err error) error {
	return ctx.JSON(fiber.StatusBadRequest, map[string]any{
		"error": "failed to parse request body",
	})
}

func writePayloadErrors(ctx router.Context, err error) error {
	return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
		"error":      "invalid request payload",
		"validation": FormatValidationErrorToMap(err),
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field to message map.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	var verrs validation.Errors
	if goerrors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	if err != nil {
		out["payload"] = err.Error()
	}

	return out
}
