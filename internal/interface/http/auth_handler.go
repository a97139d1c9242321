package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/application"
	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
	"github.com/oksasatya/go-event-finder/pkg/response"
	"github.com/oksasatya/go-event-finder/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userPayload struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Location  string     `json:"location,omitempty"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func payloadOf(u *entity.User) userPayload {
	return userPayload{ID: u.ID, Name: u.Name, Email: u.Email, Location: u.Location}
}

func sessionPayload(s *application.Session) userPayload {
	p := payloadOf(s.User)
	p.Token = s.Token
	exp := s.ExpiresAt
	p.ExpiresAt = &exp
	return p
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req application.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, validation.ToDetails(err))
		return
	}
	sess, err := h.Svc.Signup(c.Request.Context(), req)
	if err != nil {
		renderError(c, h.Logger, err, opAuth)
		return
	}
	h.Cookies.SetAccess(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusCreated, sessionPayload(sess), "User registered successfully")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, validation.ToDetails(err))
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		renderError(c, h.Logger, err, opAuth)
		return
	}
	h.Cookies.SetAccess(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, sessionPayload(sess), "Login successful")
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.Profile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		renderError(c, h.Logger, err, opAuth)
		return
	}
	response.Success(c, http.StatusOK, payloadOf(u), "")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), c.GetString("userID")); err != nil {
		h.Logger.WithError(err).Warn("drop session failed")
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "Logged out")
}
