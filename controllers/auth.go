// controllers/auth.go
package controllers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"contact-intake-api/services"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Authenticator is satisfied by services.AuthService.
type Authenticator interface {
	Login(ctx context.Context, username, password string, policy services.TokenPolicy) (*services.LoginResult, error)
}

type AuthController struct {
	auth   Authenticator
	logger *slog.Logger
}

func NewAuthController(auth Authenticator, logger *slog.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// AdminLogin handles POST /api/admin/login for the web console.
func (ac *AuthController) AdminLogin(c *gin.Context) {
	req, ok := ac.bindLogin(c, "Usuario y contraseña son requeridos")
	if !ok {
		return
	}

	res, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password, services.ConsolePolicy)
	if err != nil {
		fallback := "Error en el servidor"
		if statusForError(err) == http.StatusUnauthorized {
			fallback = "Credenciales inválidas"
		}
		respondError(c, ac.logger, keyMessage, err, fallback)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   res.Token,
	})
}

// MobileLogin handles POST /api/mobile/login; the token lives 7 days and
// the admin profile is returned alongside it.
func (ac *AuthController) MobileLogin(c *gin.Context) {
	req, ok := ac.bindLogin(c, "Username and password are required")
	if !ok {
		return
	}

	res, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password, services.MobilePolicy)
	if err != nil {
		fallback := "Server error during authentication"
		if statusForError(err) == http.StatusUnauthorized {
			fallback = "Invalid credentials"
		}
		respondError(c, ac.logger, keyMessage, err, fallback)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   res.Token,
		"user":    res.Admin.Profile(),
	})
}

func (ac *AuthController) bindLogin(c *gin.Context, missingMsg string) (LoginRequest, bool) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, ac.logger, keyMessage, bodyError(err), "")
		return req, false
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": missingMsg})
		return req, false
	}
	return req, true
}
