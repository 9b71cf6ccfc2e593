package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type queueSubmitRequest struct {
	JobDescription string `json:"jobDescription"`
}

func (s *Server) submitQueue(c *gin.Context) {
	var req queueSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.JobDescription == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("jobDescription is required"))
		return
	}

	id, length, err := s.deps.Queue.Submit(req.JobDescription)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"id":          id,
		"queueLength": length,
	})
}

func (s *Server) listQueue(c *gin.Context) {
	tasks, err := s.deps.Queue.List()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type queueCompleteRequest struct {
	ID     string `json:"id"`
	CVHTML string `json:"cvHtml"`
}

func (s *Server) completeQueue(c *gin.Context) {
	var req queueCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.ID == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("id is required"))
		return
	}

	if err := s.deps.Queue.Complete(req.ID, req.CVHTML); err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) runStatus(c *gin.Context) {
	status, ok := s.deps.Runner.Status(c.Param("id"))
	if !ok {
		errorResponse(c, http.StatusNotFound, errors.New("run not found"))
		return
	}
	c.JSON(http.StatusOK, status)
}
