package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ops-desk/mission-control/internal/qa"
	"github.com/ops-desk/mission-control/internal/store"
)

func (s *Server) submitQA(c *gin.Context) {
	var req qa.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.CVID == "" || req.JobTitle == "" || req.Company == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("cvId, jobTitle and company are required"))
		return
	}

	result, err := s.deps.QA.Submit(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"qaId":      result.CVID,
		"status":    result.Status,
		"runId":     result.RunID,
		"qaVerdict": result.Verdict,
		"qaScore":   result.Score,
		"qaNotes":   result.Notes,
	})
}

func (s *Server) getQA(c *gin.Context) {
	if cvID := c.Query("cvId"); cvID != "" {
		review, err := s.deps.QA.Get(c.Request.Context(), cvID)
		if errors.Is(err, store.ErrNotFound) {
			errorResponse(c, http.StatusNotFound, err)
			return
		}
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, review)
		return
	}

	reviews, err := s.deps.QA.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (s *Server) updateQA(c *gin.Context) {
	var req qa.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.CVID == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("cvId is required"))
		return
	}

	err := s.deps.QA.Update(c.Request.Context(), &req)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}

	status := req.Status
	if status == "" {
		status = req.Verdict
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cvId":    req.CVID,
		"status":  status,
	})
}
