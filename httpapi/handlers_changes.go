package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"translatehub/change"
	"translatehub/review"
)

func (s *Server) handleSubmitChange(c *gin.Context) {
	var req struct {
		DialogueID string `json:"dialogue_id" binding:"required"`
		NewTrans   string `json:"new_trans"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dialogue_id is required"})
		return
	}

	created, err := s.review.Submit(c.Request.Context(), review.SubmitParams{
		TaskID:     c.Param("id"),
		DialogueID: req.DialogueID,
		ProposerID: actorID(c),
		Text:       req.NewTrans,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, toChangeJSON(created))
}

func (s *Server) handleListChanges(c *gin.Context) {
	var status change.Status
	if v := c.Query("status"); v != "" {
		status = change.Status(v)
		switch status {
		case change.StatusPending, change.StatusApproved, change.StatusRejected:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending, approved or rejected"})
			return
		}
	}

	changes, err := s.review.ListChanges(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": toChangeListJSON(changes)})
}

func (s *Server) handleListDialogueChanges(c *gin.Context) {
	var status change.Status
	if v := c.Query("status"); v != "" {
		status = change.Status(v)
		switch status {
		case change.StatusPending, change.StatusApproved, change.StatusRejected:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending, approved or rejected"})
			return
		}
	}

	changes, err := s.review.ListDialogueChanges(c.Request.Context(), c.Param("id"), c.Param("dialogue_id"), status)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": toChangeListJSON(changes)})
}

func (s *Server) handleReview(c *gin.Context) {
	var req struct {
		ChangeID string `json:"change_id" binding:"required"`
		Decision string `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "change_id and decision are required"})
		return
	}

	res, err := s.review.Review(c.Request.Context(), review.ReviewParams{
		TaskID:      c.Param("id"),
		ChangeID:    req.ChangeID,
		ReviewerID:  actorID(c),
		CanModerate: actorRole(c).CanReview(),
		Decision:    req.Decision,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	out := gin.H{"change": toChangeJSON(res.Change)}
	if res.Dialogue != nil {
		out["dialogue"] = toDialogueJSON(*res.Dialogue)
	}
	c.JSON(http.StatusOK, out)
}
