package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	"github.com/Mr-Dark-debug/lowcode/internal/database"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
)

type errorBody struct {
	Error string `json:"error"`
}

type projectRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Components  json.RawMessage `json:"components"`
}

type templateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Components  json.RawMessage `json:"components"`
	Thumbnail   string          `json:"thumbnail"`
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func (s *HTTPServer) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		msg = fmt.Sprint(he.Message)
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
		msg = "not found"
	}

	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("uri", c.Request().RequestURI).Error("handler error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorBody{Error: msg})
}

// canonicalForest checks that raw is a JSON array of well-formed nodes and
// returns it re-encoded.
func canonicalForest(raw json.RawMessage) (json.RawMessage, error) {
	forest, err := editor.UnmarshalForest(raw)
	if err != nil {
		return nil, badRequest("components must be a JSON array of nodes")
	}
	if err := editor.NewSession().Load(forest); err != nil {
		return nil, badRequest("invalid components: " + err.Error())
	}
	out, err := editor.MarshalForest(forest)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func missing(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func parseID(c echo.Context) (int64, error) {
	return database.ParseID(c.Param("id"))
}

// ============================================================
// Health & Metrics
// ============================================================

func (s *HTTPServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleMetrics(c echo.Context) error {
	stats, err := s.store.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		Metrics
		Store *database.Stats `json:"store"`
	}{s.Metrics(), stats})
}

// ============================================================
// Projects
// ============================================================

func (s *HTTPServer) listProjects(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		projects []*database.Project
		err      error
	)
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		projects, err = s.store.SearchProjects(ctx, q, 100)
	} else {
		projects, err = s.store.ListProjects(ctx)
	}
	if err != nil {
		return err
	}
	if projects == nil {
		projects = []*database.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *HTTPServer) getProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := s.store.GetProject(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *HTTPServer) createProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed request body")
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || missing(req.Components) {
		return badRequest("name and components are required")
	}
	components, err := canonicalForest(req.Components)
	if err != nil {
		return err
	}

	in := database.NewProject{Name: *req.Name, Components: components}
	if req.Description != nil {
		in.Description = *req.Description
	}
	p, err := s.store.CreateProject(c.Request().Context(), in)
	if err != nil {
		return err
	}

	atomic.AddInt64(&s.metrics.ProjectsCreated, 1)
	s.log.WithField("project", p.ID).Info("project created")
	return c.JSON(http.StatusCreated, p)
}

func (s *HTTPServer) updateProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed request body")
	}

	patch := database.ProjectPatch{Name: req.Name, Description: req.Description}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return badRequest("name cannot be empty")
	}
	if !missing(req.Components) {
		if patch.Components, err = canonicalForest(req.Components); err != nil {
			return err
		}
	}

	p, err := s.store.UpdateProject(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}

	atomic.AddInt64(&s.metrics.ProjectsUpdated, 1)
	return c.JSON(http.StatusOK, p)
}

func (s *HTTPServer) deleteProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProject(c.Request().Context(), id); err != nil {
		return err
	}

	atomic.AddInt64(&s.metrics.ProjectsDeleted, 1)
	s.log.WithField("project", id).Info("project deleted")
	return c.NoContent(http.StatusNoContent)
}

// ============================================================
// Templates
// ============================================================

func (s *HTTPServer) listTemplates(c echo.Context) error {
	templates, err := s.store.ListTemplates(c.Request().Context())
	if err != nil {
		return err
	}
	if templates == nil {
		templates = []*database.Template{}
	}
	return c.JSON(http.StatusOK, templates)
}

func (s *HTTPServer) getTemplate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := s.store.GetTemplate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *HTTPServer) createTemplate(c echo.Context) error {
	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed request body")
	}
	if strings.TrimSpace(req.Name) == "" || missing(req.Components) {
		return badRequest("name and components are required")
	}
	components, err := canonicalForest(req.Components)
	if err != nil {
		return err
	}

	t, err := s.store.CreateTemplate(c.Request().Context(), database.NewTemplate{
		Name:        req.Name,
		Description: req.Description,
		Components:  components,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		return err
	}

	atomic.AddInt64(&s.metrics.TemplatesCreated, 1)
	return c.JSON(http.StatusCreated, t)
}
