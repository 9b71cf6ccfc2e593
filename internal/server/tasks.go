package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ops-desk/mission-control/internal/store"
)

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.deps.Tasks.List(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title     string   `json:"title"`
	Assignee  string   `json:"assignee"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority"`
	Category  string   `json:"category"`
	DueDate   string   `json:"dueDate"`
	RelatedTo []string `json:"relatedTo"`
}

func (s *Server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.Title == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	task := &store.Task{
		Title:     req.Title,
		Assignee:  req.Assignee,
		Status:    req.Status,
		Priority:  req.Priority,
		Category:  req.Category,
		DueDate:   req.DueDate,
		RelatedTo: store.StringList(req.RelatedTo),
	}
	if err := s.deps.Tasks.Create(c.Request.Context(), task); err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

var taskPatchColumns = map[string]string{
	"title":    "title",
	"assignee": "assignee",
	"status":   "status",
	"priority": "priority",
	"category": "category",
	"dueDate":  "due_date",
}

func (s *Server) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}

	fields := make(map[string]any, len(body))
	for key, value := range body {
		if column, ok := taskPatchColumns[key]; ok {
			fields[column] = value
		}
	}

	err := s.deps.Tasks.UpdateFields(c.Request.Context(), id, fields)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	err := s.deps.Tasks.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func taskID(c *gin.Context) (uint, bool) {
	idParam := c.Query("id")
	if idParam == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("id is required"))
		return 0, false
	}
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, errors.New("id must be numeric"))
		return 0, false
	}
	return uint(id), true
}
