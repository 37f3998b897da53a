// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package models

import "time"

// Project is a portfolio entry belonging to a category. CategoryID is a weak
// reference: it is checked on writes but never cascaded.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CategoryID  string    `json:"categoryId"`
	Label       string    `json:"label"`
	Location    string    `json:"location"`
	Year        string    `json:"year"`
	Image       string    `json:"image"`
	Href        string    `json:"href"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectPatch carries the fields of a partial project update.
type ProjectPatch struct {
	Name        *string   `json:"name"`
	CategoryID  *string   `json:"categoryId"`
	Label       *string   `json:"label"`
	Location    *string   `json:"location"`
	Year        *string   `json:"year"`
	Image       *string   `json:"image"`
	Href        *string   `json:"href"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Images      *[]string `json:"images"`
}

// Apply merges the non-nil fields of p into pr and re-syncs the cover image.
func (p ProjectPatch) Apply(pr *Project) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&pr.Name, p.Name)
	set(&pr.CategoryID, p.CategoryID)
	set(&pr.Label, p.Label)
	set(&pr.Location, p.Location)
	set(&pr.Year, p.Year)
	set(&pr.Image, p.Image)
	set(&pr.Href, p.Href)
	set(&pr.Title, p.Title)
	set(&pr.Description, p.Description)
	if p.Images != nil {
		pr.Images = *p.Images
	}
	pr.SyncCover()
}

// SyncCover forces the legacy cover image to the first gallery image
// whenever the gallery is non-empty.
func (pr *Project) SyncCover() {
	if pr.Images == nil {
		pr.Images = []string{}
	}
	if len(pr.Images) > 0 {
		pr.Image = pr.Images[0]
	}
}

// DisplayTitle returns the title override, falling back to the name.
func (pr *Project) DisplayTitle() string {
	if pr.Title != "" {
		return pr.Title
	}
	return pr.Name
}
