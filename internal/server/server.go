package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"showcase_ingest/internal/diagnostics"
	"showcase_ingest/internal/models"
	"showcase_ingest/internal/workspace"
)

// Server exposes the last run's diagnostics report and the thumbnail tree,
// read-only, for manual remediation.
type Server struct {
	cfg    *models.Config
	router *gin.Engine
	http   *http.Server
}

func NewServer(cfg *models.Config) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	layout := workspace.New(cfg.Workspace)
	r.Static("/thumbs", layout.Thumbs)

	s := &Server{cfg: cfg, router: r}

	r.GET("/health", s.handleHealth)
	r.GET("/diagnostics", s.handleDiagnostics)

	s.http = &http.Server{Addr: cfg.ServerAddr, Handler: r}
	return s
}

// Handler is the router, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleDiagnostics serves the last report, optionally filtered by ?reason=.
// ?summary=true returns per-reason counts only.
func (s *Server) handleDiagnostics(c *gin.Context) {
	const op = "server.handleDiagnostics"

	report, err := diagnostics.ReadReport(s.cfg.OutputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no run report available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("%s: %v", op, err)})
		return
	}

	if summary, _ := strconv.ParseBool(c.Query("summary")); summary {
		counts := make(map[string]int)
		for _, cnt := range diagnostics.Counts(report.Entries) {
			counts[cnt.Reason] = cnt.Total
		}
		c.JSON(http.StatusOK, gin.H{
			"run_id":      report.RunID,
			"submissions": report.Submissions,
			"degraded":    len(report.Entries),
			"by_reason":   counts,
		})
		return
	}

	if reason := c.Query("reason"); reason != "" {
		filtered := make([]diagnostics.Entry, 0, len(report.Entries))
		for _, e := range report.Entries {
			if e.Reason == reason {
				filtered = append(filtered, e)
			}
		}
		report.Entries = filtered
	}
	c.JSON(http.StatusOK, report)
}
