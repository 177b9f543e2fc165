package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Todo    *apiHandler.TodoHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/todos", authMiddleware(handlers.Todo.GetTodos))
	r.POST("/api/v1/todos", authMiddleware(handlers.Todo.CreateTodo))
	r.PUT("/api/v1/todos/mark-complete", authMiddleware(handlers.Todo.MarkComplete))
	r.GET("/api/v1/todos/export/{type}", authMiddleware(handlers.Todo.Export))
	r.GET("/api/v1/todos/{id}", authMiddleware(handlers.Todo.GetTodo))
	r.PUT("/api/v1/todos/{id}", authMiddleware(handlers.Todo.UpdateTodo))
	r.DELETE("/api/v1/todos/{id}", authMiddleware(handlers.Todo.DeleteTodo))

	return r
}
