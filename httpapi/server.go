// Package httpapi exposes the collaboration workflow over HTTP using gin.
// Handlers stay thin: bind, call a service, translate errors to status codes.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"translatehub/auth"
	"translatehub/importer"
	"translatehub/project"
	"translatehub/review"
	"translatehub/task"
)

type Server struct {
	auth     *auth.Service
	projects *project.Service
	tasks    *task.Service
	importer *importer.Service
	review   *review.Service
}

func NewServer(authSvc *auth.Service, projects *project.Service, tasks *task.Service, imp *importer.Service, reviewSvc *review.Service) *Server {
	return &Server{
		auth:     authSvc,
		projects: projects,
		tasks:    tasks,
		importer: imp,
		review:   reviewSvc,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.POST("/auth/register", s.handleRegister)
	r.POST("/auth/login", s.handleLogin)

	authed := r.Group("/", s.requireAuth())
	{
		authed.GET("/projects", s.handleListProjects)
		authed.POST("/projects", s.handleCreateProject)
		authed.GET("/projects/:id", s.handleGetProject)
		authed.PATCH("/projects/:id", s.handleRenameProject)

		authed.POST("/tasks", s.handleCreateTask)
		authed.GET("/tasks/:id", s.handleGetTask)
		authed.POST("/tasks/:id/close", s.handleCloseTask)
		authed.POST("/tasks/:id/reopen", s.handleReopenTask)

		authed.POST("/tasks/:id/changes", s.handleSubmitChange)
		authed.GET("/tasks/:id/changes", s.handleListChanges)
		authed.GET("/tasks/:id/dialogues/:dialogue_id/changes", s.handleListDialogueChanges)
		authed.POST("/tasks/:id/review", s.handleReview)
	}

	return r
}
