package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-maze/api/i"
	svci "github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// Router manages the HTTP handler and its dependencies,
// including controllers and JWT authentication.
type Router struct {
	baseURL                 string
	controllers             []i.Controller
	authorizationMiddleware gin.HandlerFunc
	allowedOrigins          []string
	logger                  svci.Logger
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	BaseURL                 string // Base URL for API routes
	Controllers             []i.Controller
	AuthorizationMiddleware gin.HandlerFunc
	AllowedOrigins          []string // Empty allows every origin
	Logger                  svci.Logger
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	return &Router{
		baseURL:                 config.BaseURL,
		controllers:             config.Controllers,
		authorizationMiddleware: config.AuthorizationMiddleware,
		allowedOrigins:          config.AllowedOrigins,
		logger:                  config.Logger,
	}
}

// Handler builds the gin engine and wraps it in the CORS handler.
//
// Routes are grouped and managed under the base URL, with the following access levels:
// - Public routes: No authentication required.
// - Protected routes: Authentication required.
func (r *Router) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	if r.logger != nil {
		router.Use(requestLogger(r.logger))
	}

	// Setting up routes under baseURL
	api := router.Group(r.baseURL)

	{
		// Public routes (accessible without authentication)
		publicRoutes := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterPublic(publicRoutes)
			}
		}

		// Protected routes (authentication required)
		protectedRoutes := api.Group("/v1")
		protectedRoutes.Use(r.authorizationMiddleware)
		{
			for _, c := range r.controllers {
				c.RegisterProtected(protectedRoutes)
			}
		}
	}

	return r.cors().Handler(router)
}

func (r *Router) cors() *cors.Cors {
	options := cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}
	// Credentials only go to origins that were named explicitly.
	if len(r.allowedOrigins) == 0 {
		options.AllowedOrigins = []string{"*"}
	} else {
		options.AllowedOrigins = r.allowedOrigins
		options.AllowCredentials = true
	}
	return cors.New(options)
}

func requestLogger(logger svci.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		msg := fmt.Sprintf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error(msg)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warning(msg)
		default:
			logger.Debug(msg)
		}
	}
}
