package api

import (
	"net/http"
	"strconv"

	"negmdf/app"
	"negmdf/domain/core"
	"negmdf/domain/ion"
	"negmdf/internal/errors"
	"negmdf/ports"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"persistence": s.service.Persistent(),
	})
}

// handleScreen screens the posted compounds against the posted observations
func (s *Server) handleScreen(c *gin.Context) {
	var req ScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	source := req.Source
	if source == "" {
		source = DefaultSource
	}

	report, err := s.service.Screen(c.Request.Context(), app.ScreenRequest{
		Tolerance: req.Tolerance,
		Compounds: req.Compounds,
		Batch:     ion.Batch{Source: source, Observations: req.Observations},
		Persist:   req.Persist,
	})
	if err != nil {
		s.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newScreenResponse(report.RunID, report.Result))
}

// handleListRuns lists stored runs, newest first
func (s *Server) handleListRuns(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		s.abort(c, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		s.abort(c, err)
		return
	}

	runs, err := s.service.ListRuns(c.Request.Context(), ports.RunFilters{Limit: limit, Offset: offset})
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// handleGetRun returns one stored run with its outcomes
func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.abort(c, errors.InvalidInput(err.Error()))
		return
	}

	run, err := s.service.GetRun(c.Request.Context(), id)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, RunResponse{
		CreatedAt:      run.CreatedAt,
		ScreenResponse: newScreenResponse(run.ID, &run.Result),
	})
}

func (s *Server) abort(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.InvalidInput(key + " must be a non-negative integer")
	}
	return v, nil
}
