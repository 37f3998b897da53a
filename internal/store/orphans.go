// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"

	"hsarchitects/internal/models"
)

// Orphans returns the projects whose category no longer exists.
func Orphans(ctx context.Context, repos *Repositories) ([]models.Project, error) {
	categories, err := repos.Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("orphans list categories: %w", err)
	}
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	projects, err := repos.Projects.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("orphans list projects: %w", err)
	}
	var out []models.Project
	for _, p := range projects {
		if !known[p.CategoryID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeleteOrphans removes every orphaned project and returns the ones it
// removed. Projects deleted concurrently are skipped.
func DeleteOrphans(ctx context.Context, repos *Repositories) ([]models.Project, error) {
	orphans, err := Orphans(ctx, repos)
	if err != nil {
		return nil, err
	}
	removed := orphans[:0]
	for _, p := range orphans {
		err := repos.Projects.Delete(ctx, p.ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("delete orphan %s: %w", p.ID, err)
		}
		removed = append(removed, p)
	}
	return removed, nil
}
