package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ops-desk/mission-control/internal/store"
	"github.com/ops-desk/mission-control/internal/tailoring"
)

type analyzeRequest struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (s *Server) analyzeJob(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.URL == "" && req.Description == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("either url or description is required"))
		return
	}

	result, err := s.deps.Orchestrator.Analyze(c.Request.Context(), req.URL, req.Description)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) generateFull(c *gin.Context) {
	var req tailoring.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.JobDescription == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("jobDescription is required"))
		return
	}

	result, err := s.deps.Orchestrator.Generate(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"status":          result.Status,
		"runId":           result.RunID,
		"jobTitle":        result.JobTitle,
		"company":         result.Company,
		"atsScore":        result.ATSScore,
		"matchedKeywords": result.MatchedKeywords,
		"missingKeywords": result.MissingKeywords,
		"html":            result.HTML,
	})
}

type renderRequest struct {
	Job struct {
		Title   string `json:"title"`
		Company string `json:"company"`
	} `json:"job"`
	Content string `json:"content"`
}

func (s *Server) renderCV(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.Job.Title == "" || req.Job.Company == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("job.title and job.company are required"))
		return
	}

	rendered, err := s.deps.Renderer.Render(req.Job.Title, req.Job.Company, req.Content)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"downloadUrl": rendered.DownloadURL,
		"filename":    rendered.Filename,
		"html":        rendered.HTML,
	})
}

func (s *Server) listHistory(c *gin.Context) {
	if idParam := c.Query("id"); idParam != "" {
		id, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, errors.New("id must be numeric"))
			return
		}
		entry, err := s.deps.History.GetByID(c.Request.Context(), uint(id))
		if errors.Is(err, store.ErrNotFound) {
			errorResponse(c, http.StatusNotFound, err)
			return
		}
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, entry)
		return
	}

	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, errors.New("limit must be numeric"))
			return
		}
		limit = parsed
	}

	entries, err := s.deps.History.List(c.Request.Context(), limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type createHistoryRequest struct {
	JobTitle        string   `json:"jobTitle"`
	Company         string   `json:"company"`
	JobURL          string   `json:"jobUrl"`
	ATSScore        int      `json:"atsScore"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	CVHTML          string   `json:"cvHtml"`
	PDFPath         string   `json:"pdfPath"`
	Status          string   `json:"status"`
	Notes           string   `json:"notes"`
}

func (s *Server) createHistory(c *gin.Context) {
	var req createHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.JobTitle == "" || req.Company == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("jobTitle and company are required"))
		return
	}

	entry := &store.CVHistoryEntry{
		JobTitle:        req.JobTitle,
		Company:         req.Company,
		JobURL:          req.JobURL,
		ATSScore:        req.ATSScore,
		MatchedKeywords: store.StringList(req.MatchedKeywords),
		MissingKeywords: store.StringList(req.MissingKeywords),
		CVHTML:          req.CVHTML,
		PDFPath:         req.PDFPath,
		Status:          req.Status,
		Notes:           req.Notes,
	}
	if err := s.deps.History.Create(c.Request.Context(), entry); err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Column whitelist for history patches. Unknown body keys are ignored
// rather than rejected.
var historyPatchColumns = map[string]string{
	"jobTitle": "job_title",
	"company":  "company",
	"jobUrl":   "job_url",
	"atsScore": "ats_score",
	"pdfPath":  "pdf_path",
	"status":   "status",
	"notes":    "notes",
}

func (s *Server) updateHistory(c *gin.Context) {
	idParam := c.Query("id")
	if idParam == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, errors.New("id must be numeric"))
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}

	fields := make(map[string]any, len(body))
	for key, value := range body {
		if column, ok := historyPatchColumns[key]; ok {
			fields[column] = value
		}
	}

	err = s.deps.History.UpdateFields(c.Request.Context(), uint(id), fields)
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

func (s *Server) deleteHistory(c *gin.Context) {
	idParam := c.Query("id")
	if idParam == "" {
		errorResponse(c, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, errors.New("id must be numeric"))
		return
	}

	err = s.deps.History.Delete(c.Request.Context(), uint(id))
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
