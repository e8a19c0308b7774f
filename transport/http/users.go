package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/service"
)

// UserHandlers serves the principal management routes
type UserHandlers struct {
	users *service.UserService
	log   zerolog.Logger
}

func NewUserHandlers(users *service.UserService, log zerolog.Logger) *UserHandlers {
	return &UserHandlers{users: users, log: log}
}

func (h *UserHandlers) List(c *gin.Context) {
	principals, err := h.users.List(c.Request.Context())
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	views := make([]principalView, 0, len(principals))
	for _, p := range principals {
		views = append(views, newPrincipalView(p))
	}
	count := len(views)
	c.JSON(http.StatusOK, envelope{Success: true, Count: &count, Data: views})
}

func (h *UserHandlers) Get(c *gin.Context) {
	principal, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok(newPrincipalView(principal)))
}

// Create provisions a principal on behalf of an admin. The private key is returned once and
// no session is issued.
func (h *UserHandlers) Create(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	actor, _ := currentPrincipal(c)
	created, err := h.users.Create(c.Request.Context(), actor, service.RegisterInput{
		Username: req.Username,
		Role:     req.Role,
	})
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, ok(registrationView{
		ID:            created.Principal.ID,
		WalletAddress: created.Principal.Address,
		PrivateKey:    created.Secret,
		Username:      created.Principal.Username,
		Role:          created.Principal.Role,
	}))
}

func (h *UserHandlers) Update(c *gin.Context) {
	var req struct {
		Username *string `json:"username"`
		Role     *string `json:"role"`
		Status   *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	update := core.PrincipalUpdate{Username: req.Username}
	if req.Role != nil {
		role := core.Role(*req.Role)
		update.Role = &role
	}
	if req.Status != nil {
		status := core.Status(*req.Status)
		update.Status = &status
	}

	actor, _ := currentPrincipal(c)
	principal, err := h.users.Update(c.Request.Context(), actor, c.Param("id"), update)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok(newPrincipalView(principal)))
}

func (h *UserHandlers) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	status, err := core.ParseStatus(req.Status)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	actor, _ := currentPrincipal(c)
	principal, err := h.users.SetStatus(c.Request.Context(), actor, c.Param("id"), status)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok(newPrincipalView(principal)))
}

func (h *UserHandlers) Delete(c *gin.Context) {
	actor, _ := currentPrincipal(c)
	if err := h.users.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "user deleted"})
}
