package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// AuthHandler serves the login flows of one namespace.
type AuthHandler struct {
	authService ports.AuthService
	ns          domain.Namespace
}

func NewAuthHandler(authService ports.AuthService, ns domain.Namespace) *AuthHandler {
	return &AuthHandler{authService: authService, ns: ns}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

type sendOTPRequest struct {
	Phone string `json:"phone" validate:"required,numeric,min=10,max=15"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,numeric,min=10,max=15"`
	OTP   string `json:"otp"   validate:"required,numeric,len=6"`
}

type profileRequest struct {
	Name    string `json:"name"    validate:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type authResponse struct {
	User *domain.Identity `json:"user,omitempty"`
}

// roleMismatch is the message shown when a credential of the other role is
// used on a login screen.
func (h *AuthHandler) roleMismatch() string {
	if h.ns == domain.NamespaceAdministrator {
		return "Access denied. Admin credentials required."
	}
	return "Access denied. Please use user credentials."
}

// Login authenticates against the remote API and stores the session of the
// handler's namespace.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /api/auth/login [post]
// @Router       /admin/api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), h.ns, req.Email, req.Password)
	if errors.Is(err, domain.ErrRoleMismatch) {
		return echo.NewHTTPError(http.StatusUnauthorized, h.roleMismatch())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}

// Signup creates a shopper account. The browser logs in afterwards.
//
// @Summary      Register a new shopper
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), domain.Signup{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// SendOTP asks the remote API to text a one-time code to a phone.
//
// @Summary      Send a login code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sendOTPRequest  true  "Phone number"
// @Success      200   {object}  messageResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/otp/send [post]
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.authService.SendOTP(c.Request().Context(), req.Phone); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "otp sent"})
}

// VerifyOTP exchanges a one-time code for a shopper session.
//
// @Summary      Login with a one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Phone and code"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.VerifyOTP(c.Request().Context(), req.Phone, req.OTP)
	if errors.Is(err, domain.ErrRoleMismatch) {
		return echo.NewHTTPError(http.StatusUnauthorized, h.roleMismatch())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}

// Logout clears the handler's namespace only.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200   {object}  messageResponse
// @Router       /api/auth/logout [post]
// @Router       /admin/api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	redirect, err := h.authService.Logout(c.Request().Context(), h.ns)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "signed out", Redirect: redirect})
}

// Me returns the identity cached with the namespace's session.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/me [get]
// @Router       /admin/api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authService.Me(c.Request().Context(), h.ns)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}

// UpdateProfile saves the shopper's profile on the remote API and refreshes
// the cached identity.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      profileRequest  true  "Profile"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), domain.Identity{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}
