package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"fleet-charging/auth"
	"fleet-charging/handlers/base"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	auth   *auth.Service
	logger *slog.Logger
}

func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		logger: logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a self-service user account. Any role field in the
// request body is discarded; role grants go through the admin-only
// CreateUser route.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return base.HandleBindError(c, err)
	}

	return h.createAccount(c, req.Username, req.Password, auth.RoleUser)
}

// CreateUser registers an account with an explicit role. Admin only.
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return base.HandleBindError(c, err)
	}

	return h.createAccount(c, req.Username, req.Password, req.Role)
}

func (h *AuthHandler) createAccount(c echo.Context, username, password, role string) error {
	user, err := h.auth.Register(username, password, role)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			return base.ConflictError("username already registered")
		}
		return base.BadRequestError("%v", err)
	}

	h.logger.Info("User registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return base.SendCreatedJSON(c, "User registered successfully", user)
}

// Login authenticates a user and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return base.HandleBindError(c, err)
	}

	token, user, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return base.InternalServerError("login failed")
	}

	return base.SendOKJSON(c, "Login successful", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me returns the account behind the presented token.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	user, err := h.auth.UserByID(claims.UserID)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendGetResponse(c, user)
}
