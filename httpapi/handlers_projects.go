package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"translatehub/project"
)

func (s *Server) handleListProjects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	projects, err := s.projects.List(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}

	out := make([]projectJSON, len(projects))
	for i, p := range projects {
		out[i] = toProjectJSON(p)
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		SourceLang string `json:"source_lang" binding:"required"`
		TargetLang string `json:"target_lang" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, source_lang and target_lang are required"})
		return
	}

	created, err := s.projects.Create(c.Request.Context(), project.CreateParams{
		Name:       req.Name,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProjectJSON(created))
}

func (s *Server) handleGetProject(c *gin.Context) {
	id := c.Param("id")

	p, err := s.projects.GetByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}

	tasks, err := s.tasks.ListByProject(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}

	out := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskJSON(t)
	}
	c.JSON(http.StatusOK, gin.H{
		"project": toProjectJSON(p),
		"tasks":   out,
	})
}

func (s *Server) handleRenameProject(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	renamed, err := s.projects.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectJSON(renamed))
}
