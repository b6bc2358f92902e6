package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"translatehub/importer"
)

// handleCreateTask ingests an uploaded document as a new task. Multipart form:
// file (required), project_id (required), name (optional, defaults to the
// uploaded filename).
func (s *Server) handleCreateTask(c *gin.Context) {
	projectID := c.PostForm("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondErr(c, err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		respondErr(c, err)
		return
	}

	view, err := s.importer.Import(c.Request.Context(), importer.Params{
		ProjectID: projectID,
		Name:      c.PostForm("name"),
		Filename:  fileHeader.Filename,
		CreatorID: actorID(c),
		Content:   string(content),
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskViewJSON(view))
}

func (s *Server) handleGetTask(c *gin.Context) {
	view, err := s.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskViewJSON(view))
}

func (s *Server) handleCloseTask(c *gin.Context) {
	t, err := s.tasks.Close(c.Request.Context(), c.Param("id"), actorID(c), actorRole(c).CanReview())
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskJSON(t))
}

func (s *Server) handleReopenTask(c *gin.Context) {
	t, err := s.tasks.Reopen(c.Request.Context(), c.Param("id"), actorID(c), actorRole(c).CanReview())
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskJSON(t))
}
