// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package handlers

import (
	"hsarchitects/internal/store"
)

// Content groups the handlers for firm content: categories, projects, the
// home grid, contact details, messages and settings. Read routes are public;
// writes sit behind the admin session gate in the router.
type Content struct {
	categories store.CategoryRepository
	projects   store.ProjectRepository
	homeGrid   store.HomeGridRepository
	contact    store.ContactRepository
	messages   store.MessageRepository
	settings   store.SettingRepository
}

// NewContent creates a new Content handler group.
func NewContent(repos *store.Repositories) *Content {
	return &Content{
		categories: repos.Categories,
		projects:   repos.Projects,
		homeGrid:   repos.HomeGrid,
		contact:    repos.Contact,
		messages:   repos.Messages,
		settings:   repos.Settings,
	}
}
