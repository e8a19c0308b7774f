package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, log zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		log:         log,
	}
}

// Register provisions a wallet and returns its private key together with a session
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	reg, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Role:     req.Role,
	})
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, ok(registrationView{
		ID:            reg.Principal.ID,
		WalletAddress: reg.Principal.Address,
		PrivateKey:    reg.Secret,
		Username:      reg.Principal.Username,
		Role:          reg.Principal.Role,
		Token:         reg.Session.Token,
	}))
}

// Login handles the secret login request
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		PrivateKey string `json:"privateKey"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.PrivateKey)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ok(newSessionView(res)))
}

// Nonce issues a fresh challenge for the address in the path
func (h *AuthHandlers) Nonce(c *gin.Context) {
	challenge, err := h.authService.RequestNonce(c.Request.Context(), c.Param("address"))
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ok(nonceView{
		Nonce:     challenge.Nonce,
		Message:   challenge.Message,
		ExpiresAt: challenge.ExpiresAt,
	}))
}

// VerifySignature handles the signature login request
func (h *AuthHandlers) VerifySignature(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "address, message and signature are required")
		return
	}

	res, err := h.authService.VerifyAndLogin(c.Request.Context(), req.Address, req.Message, req.Signature)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ok(newSessionView(res)))
}

// LoginMetaMask handles the trusted address login, which is refused unless enabled
func (h *AuthHandlers) LoginMetaMask(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "address is required")
		return
	}

	res, err := h.authService.TrustedAddressLogin(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ok(newSessionView(res)))
}

// Me returns the authenticated principal
func (h *AuthHandlers) Me(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Success: false, Message: "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, ok(newPrincipalView(principal)))
}
