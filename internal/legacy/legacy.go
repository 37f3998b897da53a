// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package legacy imports the flat-file JSON data the site used before it
// moved to a database. Records that already exist by natural key are left
// alone, so an import can be re-run safely.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hsarchitects/internal/models"
	"hsarchitects/internal/slug"
	"hsarchitects/internal/store"
)

// Legacy data file names inside the data directory.
const (
	CategoriesFile = "categories.json"
	ProjectsFile   = "projects.json"
	HomeGridFile   = "homeGrid.json"
)

// Counts tallies the outcome for one entity.
type Counts struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Report summarizes an import run.
type Report struct {
	Categories Counts `json:"categories"`
	Projects   Counts `json:"projects"`
	HomeGrid   Counts `json:"homeGrid"`
}

// id accepts legacy ids written either as JSON strings or numbers.
type id string

func (i *id) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*i = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("legacy id %s: %w", b, err)
	}
	*i = id(n.String())
	return nil
}

type legacyCategory struct {
	ID          id     `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type legacyProject struct {
	Name       string `json:"name"`
	CategoryID id     `json:"categoryId"`
	Label      string `json:"label"`
	Location   string `json:"location"`
	Year       string `json:"year"`
	Image      string `json:"image"`
	Href       string `json:"href"`
}

type legacySlot struct {
	Position           int     `json:"position"`
	Image              string  `json:"image"`
	CloudinaryPublicID *string `json:"cloudinaryPublicId"`
}

// Importer copies legacy files into a set of repositories.
type Importer struct {
	repos *store.Repositories
	dir   string

	// legacy category id -> slug, filled while importing categories.
	slugs map[string]string
}

// NewImporter creates an importer reading from dir.
func NewImporter(repos *store.Repositories, dir string) *Importer {
	return &Importer{repos: repos, dir: dir, slugs: map[string]string{}}
}

// Run imports categories, then projects, then the home grid. A missing file
// is skipped with a warning.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	rep := &Report{}
	if err := im.importCategories(ctx, &rep.Categories); err != nil {
		return rep, err
	}
	if err := im.importProjects(ctx, &rep.Projects); err != nil {
		return rep, err
	}
	if err := im.importHomeGrid(ctx, &rep.HomeGrid); err != nil {
		return rep, err
	}
	return rep, nil
}

// readFile decodes one legacy file into dst. It reports false when the file
// does not exist.
func (im *Importer) readFile(name string, dst any) (bool, error) {
	path := filepath.Join(im.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("legacy file not found, skipping", "file", path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

func (im *Importer) importCategories(ctx context.Context, n *Counts) error {
	var items []legacyCategory
	if ok, err := im.readFile(CategoriesFile, &items); !ok {
		return err
	}

	for _, c := range items {
		s := strings.TrimSpace(c.Slug)
		if s == "" {
			s = slug.Generate(c.Name)
		}
		if s == "" {
			slog.Warn("legacy category without name or slug, skipping", "id", c.ID)
			n.Skipped++
			continue
		}
		if c.ID != "" {
			im.slugs[string(c.ID)] = s
		}

		existing, err := im.repos.Categories.FindBySlug(ctx, s)
		if err != nil {
			return fmt.Errorf("import category %s: %w", s, err)
		}
		if existing != nil {
			slog.Info("category already exists", "slug", s)
			n.Skipped++
			continue
		}

		_, err = im.repos.Categories.Create(ctx, &models.Category{
			Name:        strings.TrimSpace(c.Name),
			Slug:        s,
			Description: c.Description,
			Image:       c.Image,
			GridImages:  []string{},
		})
		if err != nil {
			return fmt.Errorf("import category %s: %w", s, err)
		}
		slog.Info("category created", "slug", s)
		n.Created++
	}
	return nil
}

// resolveCategory maps a legacy category reference to a stored category.
// The reference may be a legacy id, a slug or already a stored id.
func (im *Importer) resolveCategory(ctx context.Context, ref string) (*models.Category, error) {
	if s, ok := im.slugs[ref]; ok {
		return im.repos.Categories.FindBySlug(ctx, s)
	}
	if c, err := im.repos.Categories.FindBySlug(ctx, ref); c != nil || err != nil {
		return c, err
	}
	return im.repos.Categories.FindByID(ctx, ref)
}

func (im *Importer) importProjects(ctx context.Context, n *Counts) error {
	var items []legacyProject
	if ok, err := im.readFile(ProjectsFile, &items); !ok {
		return err
	}

	for _, p := range items {
		name := strings.TrimSpace(p.Name)
		cat, err := im.resolveCategory(ctx, string(p.CategoryID))
		if err != nil {
			return fmt.Errorf("import project %q: %w", name, err)
		}
		if name == "" || cat == nil {
			slog.Warn("legacy project has no name or unknown category, skipping", "name", name, "categoryId", p.CategoryID)
			n.Skipped++
			continue
		}

		existing, err := im.repos.Projects.FindByNameAndCategory(ctx, name, cat.ID)
		if err != nil {
			return fmt.Errorf("import project %q: %w", name, err)
		}
		if existing != nil {
			slog.Info("project already exists", "name", name)
			n.Skipped++
			continue
		}

		label := strings.TrimSpace(p.Label)
		if label == "" {
			label = cat.Name
		}
		pr := &models.Project{
			Name:       name,
			CategoryID: cat.ID,
			Label:      label,
			Location:   p.Location,
			Year:       p.Year,
			Image:      p.Image,
			Href:       p.Href,
			Title:      name,
		}
		pr.SyncCover()
		if _, err := im.repos.Projects.Create(ctx, pr); err != nil {
			return fmt.Errorf("import project %q: %w", name, err)
		}
		slog.Info("project created", "name", name, "category", cat.Slug)
		n.Created++
	}
	return nil
}

func (im *Importer) importHomeGrid(ctx context.Context, n *Counts) error {
	var items []legacySlot
	if ok, err := im.readFile(HomeGridFile, &items); !ok {
		return err
	}

	for _, s := range items {
		if !models.ValidPosition(s.Position) {
			slog.Warn("legacy grid slot has invalid position, skipping", "position", s.Position)
			n.Skipped++
			continue
		}
		existing, err := im.repos.HomeGrid.FindByPosition(ctx, s.Position)
		if err != nil {
			return fmt.Errorf("import grid position %d: %w", s.Position, err)
		}
		if existing != nil {
			n.Skipped++
			continue
		}

		publicID := s.CloudinaryPublicID
		if publicID != nil && *publicID == "" {
			publicID = nil
		}
		_, err = im.repos.HomeGrid.UpsertAt(ctx, &models.HomeGridSlot{
			Position:           s.Position,
			Image:              s.Image,
			CloudinaryPublicID: publicID,
		})
		if err != nil {
			return fmt.Errorf("import grid position %d: %w", s.Position, err)
		}
		slog.Info("home grid slot created", "position", s.Position)
		n.Created++
	}
	return nil
}
