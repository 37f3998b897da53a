// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package models

import "time"

// MaxImages caps the ordered image lists carried by categories and projects.
const MaxImages = 9

// Category groups projects under a public URL segment. Deleting a category
// leaves its projects in place.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	GridImages  []string  `json:"gridImages"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryPatch carries the fields of a partial category update. Nil fields
// are left untouched.
type CategoryPatch struct {
	Name        *string   `json:"name"`
	Slug        *string   `json:"slug"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	GridImages  *[]string `json:"gridImages"`
}

// Apply merges the non-nil fields of p into c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.GridImages != nil {
		c.GridImages = *p.GridImages
	}
	c.Normalize()
}

// Normalize replaces nil lists with empty ones so they serialize as [].
func (c *Category) Normalize() {
	if c.GridImages == nil {
		c.GridImages = []string{}
	}
}
