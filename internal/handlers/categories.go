// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hsarchitects/internal/markdown"
	"hsarchitects/internal/models"
	"hsarchitects/internal/slug"
)

type categoryRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Image       string   `json:"image"`
	GridImages  []string `json:"gridImages" validate:"max=9"`
}

type categoryUpdate struct {
	ID string `json:"id"`
	models.CategoryPatch
}

// categoryDetail is the public category page payload.
type categoryDetail struct {
	models.Category
	DescriptionHTML string           `json:"descriptionHtml"`
	Projects        []models.Project `json:"projects"`
}

// CategoriesList returns every category, oldest first.
func (c *Content) CategoriesList(w http.ResponseWriter, r *http.Request) {
	list, err := c.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CategoryBySlug returns one category with its projects and the description
// rendered to HTML.
func (c *Content) CategoryBySlug(w http.ResponseWriter, r *http.Request) {
	cat, err := c.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch category")
		return
	}
	if cat == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	projects, err := c.projects.List(r.Context(), cat.ID)
	if err != nil {
		slog.Error("list category projects failed", "error", err, "category_id", cat.ID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch category")
		return
	}

	html, err := markdown.ToHTML(cat.Description)
	if err != nil {
		slog.Warn("render category description failed", "error", err, "slug", cat.Slug)
	}

	writeJSON(w, http.StatusOK, categoryDetail{
		Category:        *cat,
		DescriptionHTML: html,
		Projects:        projects,
	})
}

// CategoryCreate adds a category. The slug must already be in its public
// form; it is stored as sent.
func (c *Content) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if strings.TrimSpace(req.Slug) == "" {
		req.Slug = ""
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if msg := checkSlug(req.Slug); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	cat := &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		GridImages:  req.GridImages,
	}
	cat.Normalize()

	created, err := c.categories.Create(r.Context(), cat)
	if err != nil {
		writeStoreError(w, err, "create category", "Category not found", "Slug already exists", "Failed to create category")
		return
	}
	slog.Info("category created", "id", created.ID, "slug", created.Slug)
	writeJSON(w, http.StatusCreated, created)
}

// CategoryUpdate merges the provided fields into an existing category.
func (c *Content) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	var req categoryUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Category ID is required")
		return
	}
	trimPtr(req.Name)
	trimPtr(req.Description)
	switch {
	case blank(req.Name):
		writeError(w, http.StatusBadRequest, "name is required")
		return
	case blank(req.Description):
		writeError(w, http.StatusBadRequest, "description is required")
		return
	case req.GridImages != nil && len(*req.GridImages) > models.MaxImages:
		writeError(w, http.StatusBadRequest, "gridImages must have at most 9 entries")
		return
	}
	if req.Slug != nil {
		if msg := checkSlug(*req.Slug); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}

	cat, err := c.categories.FindByID(r.Context(), req.ID)
	if err != nil {
		slog.Error("find category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}
	if cat == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	req.CategoryPatch.Apply(cat)
	updated, err := c.categories.Update(r.Context(), cat)
	if err != nil {
		writeStoreError(w, err, "update category", "Category not found", "Slug already exists", "Failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CategoryDelete removes a category. Its projects are left in place and show
// up in the orphan report.
func (c *Content) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Category ID is required")
		return
	}
	if err := c.categories.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "delete category", "Category not found", "", "Failed to delete category")
		return
	}
	slog.Info("category deleted", "id", id)
	writeSuccess(w)
}

// checkSlug returns the validation message for a submitted slug, or "" when
// it is usable. Slugs are never rewritten.
func checkSlug(s string) string {
	switch {
	case strings.TrimSpace(s) == "":
		return "slug is required"
	case !slug.Valid(s):
		if suggested := slug.Generate(s); suggested != "" {
			return fmt.Sprintf("slug must use lowercase letters, numbers and hyphens (e.g. %q)", suggested)
		}
		return "slug must use lowercase letters, numbers and hyphens"
	}
	return ""
}
