package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-maze/service"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{
		authService: a,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/guest", c.guest)
	}
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
	route.GET("/auth/me", c.me)
}

// guest hands out a new guest identity.
func (c *IdentityServer) guest(ctx *gin.Context) {
	var request GuestRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playerID, token, err := c.authService.Guest(request.Name)
	if err != nil {
		if errors.Is(err, service.ErrInvalidName) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	response := &GuestResponse{
		PlayerID: playerID.String(),
		Name:     strings.TrimSpace(request.Name),
		Token:    token,
	}
	ctx.JSON(http.StatusCreated, response)
}

// me echoes the identity carried by the request token.
func (c *IdentityServer) me(ctx *gin.Context) {
	playerID, ok := PlayerID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"player_id": playerID.String(),
		"name":      ctx.GetString(ContextPlayerName),
	})
}
