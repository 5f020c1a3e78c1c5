// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shurcooL/githubv4"

	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/mutation"
	"github.com/sirseerhq/sirseer-lens/internal/query"
	"github.com/sirseerhq/sirseer-lens/internal/session"
	"github.com/sirseerhq/sirseer-lens/internal/sources"
	"github.com/sirseerhq/sirseer-lens/pkg/version"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Views   int    `json:"views"`
}

// PullRequestViewRequest opens a pull request view.
type PullRequestViewRequest struct {
	Owner string `json:"owner" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// FilterRequest sets or clears (empty value) one filter.
type FilterRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

// SortRequest changes the sort. An empty direction keeps the current one.
type SortRequest struct {
	Field     string `json:"field"`
	Direction string `json:"direction,omitempty"`
}

// CreateRepositoryRequest is the body of POST /repositories.
type CreateRepositoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// UpdateRepositoryRequest is the body of PATCH /repositories/:id.
type UpdateRepositoryRequest struct {
	Description *string `json:"description"`
}

// DeleteRepositoryResponse confirms a deletion.
type DeleteRepositoryResponse struct {
	ID string `json:"id"`
}

// health handles GET /health
func (s *Server) health(c *gin.Context) {
	s.mu.RLock()
	n := len(s.views)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Views:   n,
	})
}

// openRepositories handles POST /views/repositories
func (s *Server) openRepositories(c *gin.Context) {
	ctrl, err := s.session.RepositoryList()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.open(c, newListView[github.Repository]("repositories", ctrl, s.session))
}

// openPullRequests handles POST /views/pulls
func (s *Server) openPullRequests(c *gin.Context) {
	var req PullRequestViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, invalidRequest("open-pull-requests", "body", "owner and name are required"))
		return
	}

	var opts []session.ViewOption
	if s.opts.PageSizeFor != nil {
		opts = append(opts, session.WithPageSize(s.opts.PageSizeFor(req.Owner, req.Name)))
	}
	ctrl, err := s.session.PullRequestList(req.Owner, req.Name, opts...)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.open(c, newListView[github.PullRequest]("pulls", ctrl, s.session))
}

func (s *Server) open(c *gin.Context, v view) {
	id := uuid.NewString()
	s.mu.Lock()
	s.views[id] = v
	s.mu.Unlock()

	s.log.Debug().Str("view", id).Msg("view opened")
	s.respond(c, http.StatusCreated, id, v, v.load(c.Request.Context()))
}

// getView handles GET /views/:id
func (s *Server) getView(c *gin.Context) {
	id, v, ok := s.lookup(c)
	if !ok {
		return
	}
	s.respond(c, http.StatusOK, id, v, nil)
}

// setFilter handles POST /views/:id/filter
func (s *Server) setFilter(c *gin.Context) {
	id, v, ok := s.lookup(c)
	if !ok {
		return
	}
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, invalidRequest("set-filter", "name", "Filter name is required"))
		return
	}

	next := v.descriptor().WithFilter(req.Name, req.Value)
	if err := sources.CheckQuery(next); err != nil {
		s.fail(c, err)
		return
	}
	s.intent(c, id, v, func(ctx context.Context) error {
		return v.setFilter(ctx, req.Name, req.Value)
	})
}

// setSort handles POST /views/:id/sort
func (s *Server) setSort(c *gin.Context) {
	id, v, ok := s.lookup(c)
	if !ok {
		return
	}
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, invalidRequest("set-sort", "body", "Malformed sort request"))
		return
	}

	current := v.descriptor().Sort
	sort := query.Sort{Field: strings.ToUpper(req.Field), Direction: current.Direction}
	if sort.Field == "" {
		sort.Field = current.Field
	}
	if req.Direction != "" {
		dir, err := query.ParseDirection(req.Direction)
		if err != nil {
			s.fail(c, invalidRequest("set-sort", "direction", "Direction must be ASC or DESC"))
			return
		}
		sort.Direction = dir
	}

	if err := sources.CheckQuery(v.descriptor().WithSort(sort)); err != nil {
		s.fail(c, err)
		return
	}
	s.intent(c, id, v, func(ctx context.Context) error {
		return v.setSort(ctx, sort)
	})
}

// loadMore handles POST /views/:id/more
func (s *Server) loadMore(c *gin.Context) {
	id, v, ok := s.lookup(c)
	if !ok {
		return
	}
	s.intent(c, id, v, v.loadMore)
}

// retry handles POST /views/:id/retry
func (s *Server) retry(c *gin.Context) {
	id, v, ok := s.lookup(c)
	if !ok {
		return
	}
	s.intent(c, id, v, v.retry)
}

// closeView handles DELETE /views/:id
func (s *Server) closeView(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "view " + id + " does not exist"})
		return
	}
	v.release()
	s.log.Debug().Str("view", id).Msg("view closed")
	c.Status(http.StatusNoContent)
}

// createRepository handles POST /repositories
func (s *Server) createRepository(c *gin.Context) {
	var req CreateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, invalidRequest("create-repository", "body", "Malformed request body"))
		return
	}

	repo, err := s.session.CreateRepository(c.Request.Context(), mutation.CreateRepository{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  githubv4.RepositoryVisibility(req.Visibility),
	}).Unwrap()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, repo)
}

// updateRepository handles PATCH /repositories/:id
func (s *Server) updateRepository(c *gin.Context) {
	var req UpdateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Description == nil {
		s.fail(c, invalidRequest("update-repository", "description", "Description is required"))
		return
	}

	repo, err := s.session.UpdateRepositoryDescription(c.Request.Context(), mutation.UpdateRepositoryDescription{
		RepositoryID: c.Param("id"),
		Description:  *req.Description,
	}).Unwrap()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, repo)
}

// deleteRepository handles DELETE /repositories/:id
func (s *Server) deleteRepository(c *gin.Context) {
	id, err := s.session.DeleteRepository(c.Request.Context(), mutation.DeleteRepository{
		RepositoryID: c.Param("id"),
	}).Unwrap()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteRepositoryResponse{ID: id})
}

func (s *Server) lookup(c *gin.Context) (string, view, bool) {
	id := c.Param("id")
	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "view " + id + " does not exist"})
	}
	return id, v, ok
}

func (s *Server) intent(c *gin.Context, id string, v view, fn func(context.Context) error) {
	s.respond(c, http.StatusOK, id, v, fn(c.Request.Context()))
}

// respond writes the view model. A failed intent still returns the view so
// clients keep showing stale items next to the error.
func (s *Server) respond(c *gin.Context, status int, id string, v view, err error) {
	body := v.response(id)
	if err != nil {
		status = statusFor(err)
		body.Error = errorResponse(err)
		s.log.Debug().Err(err).Str("view", id).Int("status", status).Msg("intent failed")
	}
	c.JSON(status, body)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, errorResponse(err))
}
