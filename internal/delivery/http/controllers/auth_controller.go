package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventlive/internal/delivery/http/helpers"
	"eventlive/internal/domain"
)

// AuthController serves signup and login.
type AuthController struct {
	Logger *slog.Logger
	Auth   domain.AuthService
}

func NewAuthController(logger *slog.Logger, auth domain.AuthService) *AuthController {
	return &AuthController{
		Logger: logger,
		Auth:   auth,
	}
}

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignUpRequest) Validate() []string {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if r.Email == "" {
		errs = append(errs, "email is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() []string {
	var errs []string
	if r.Email == "" {
		errs = append(errs, "email is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the data payload for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// SignUp godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body SignUpRequest true "Account fields"
// @Success 201 {object} helpers.APIResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict when the email is taken"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed with per-field messages"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Auth.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if fields, ok := domain.AsValidationErrors(err); ok {
			helpers.WriteFieldErrors(w, fields)
			return
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "an account with this email already exists")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer token. Unknown email and wrong password produce the same response.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse "data contains token and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	token, user, err := c.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid email or password")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, User: user})
}
