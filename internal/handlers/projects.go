// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"hsarchitects/internal/models"
)

type projectRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	CategoryID  string   `json:"categoryId" validate:"required"`
	Label       string   `json:"label" validate:"max=200"`
	Location    string   `json:"location"`
	Year        string   `json:"year"`
	Image       string   `json:"image"`
	Href        string   `json:"href"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images" validate:"max=9"`
}

type projectUpdate struct {
	ID string `json:"id"`
	models.ProjectPatch
}

// ProjectsList returns projects newest first, optionally for one category.
func (c *Content) ProjectsList(w http.ResponseWriter, r *http.Request) {
	list, err := c.projects.List(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		slog.Error("list projects failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch projects")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ProjectCreate adds a project. The label defaults to the category name.
func (c *Content) ProjectCreate(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Label = strings.TrimSpace(req.Label)
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	cat, err := c.categories.FindByID(r.Context(), req.CategoryID)
	if err != nil {
		slog.Error("find project category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}
	if cat == nil {
		writeError(w, http.StatusBadRequest, "Category not found")
		return
	}
	// A missing label is the one required field filled in instead of rejected.
	if req.Label == "" {
		req.Label = cat.Name
	}

	p := &models.Project{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Label:       req.Label,
		Location:    req.Location,
		Year:        req.Year,
		Image:       req.Image,
		Href:        req.Href,
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
	}
	p.SyncCover()

	created, err := c.projects.Create(r.Context(), p)
	if err != nil {
		writeStoreError(w, err, "create project", "Project not found", "", "Failed to create project")
		return
	}
	slog.Info("project created", "id", created.ID, "category_id", created.CategoryID)
	writeJSON(w, http.StatusCreated, created)
}

// ProjectUpdate merges the provided fields into an existing project.
func (c *Content) ProjectUpdate(w http.ResponseWriter, r *http.Request) {
	var req projectUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Project ID is required")
		return
	}
	trimPtr(req.Name)
	trimPtr(req.Label)
	switch {
	case blank(req.Name):
		writeError(w, http.StatusBadRequest, "name is required")
		return
	case blank(req.CategoryID):
		writeError(w, http.StatusBadRequest, "categoryId is required")
		return
	case blank(req.Label):
		writeError(w, http.StatusBadRequest, "label is required")
		return
	case req.Images != nil && len(*req.Images) > models.MaxImages:
		writeError(w, http.StatusBadRequest, "images must have at most 9 entries")
		return
	}

	p, err := c.projects.FindByID(r.Context(), req.ID)
	if err != nil {
		slog.Error("find project failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	if req.CategoryID != nil && *req.CategoryID != p.CategoryID {
		cat, err := c.categories.FindByID(r.Context(), *req.CategoryID)
		if err != nil {
			slog.Error("find project category failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update project")
			return
		}
		if cat == nil {
			writeError(w, http.StatusBadRequest, "Category not found")
			return
		}
	}

	req.ProjectPatch.Apply(p)
	updated, err := c.projects.Update(r.Context(), p)
	if err != nil {
		writeStoreError(w, err, "update project", "Project not found", "", "Failed to update project")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ProjectDelete removes a project.
func (c *Content) ProjectDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Project ID is required")
		return
	}
	if err := c.projects.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "delete project", "Project not found", "", "Failed to delete project")
		return
	}
	slog.Info("project deleted", "id", id)
	writeSuccess(w)
}
