// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package memstore keeps every entity in process memory. It backs the
// "memory" driver used for local development and handler tests; nothing
// survives a restart.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hsarchitects/internal/models"
	"hsarchitects/internal/store"
)

// db is the shared state behind all repositories of one store. seq orders
// records created within the same clock tick.
type db struct {
	mu  sync.RWMutex
	seq int64

	categories map[string]*entry[models.Category]
	projects   map[string]*entry[models.Project]
	grid       map[string]*entry[models.HomeGridSlot]
	contact    *models.ContactInfo
	messages   map[string]*entry[models.Message]
	settings   map[string]*models.Setting
	users      map[string]*entry[models.User]
}

type entry[T any] struct {
	seq int64
	v   T
}

// New returns an empty in-memory store.
func New() *store.Repositories {
	d := &db{
		categories: map[string]*entry[models.Category]{},
		projects:   map[string]*entry[models.Project]{},
		grid:       map[string]*entry[models.HomeGridSlot]{},
		messages:   map[string]*entry[models.Message]{},
		settings:   map[string]*models.Setting{},
		users:      map[string]*entry[models.User]{},
	}
	return &store.Repositories{
		Categories: &categories{d},
		Projects:   &projects{d},
		HomeGrid:   &homeGrid{d},
		Contact:    &contact{d},
		Messages:   &messages{d},
		Settings:   &settings{d},
		Users:      &users{d},
	}
}

func (d *db) next() int64 {
	d.seq++
	return d.seq
}

// sorted returns the values of m ordered by creation, oldest first unless
// desc is set.
func sorted[T any](m map[string]*entry[T], desc bool) []T {
	es := make([]*entry[T], 0, len(m))
	for _, e := range m {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool {
		if desc {
			return es[i].seq > es[j].seq
		}
		return es[i].seq < es[j].seq
	})
	out := make([]T, 0, len(es))
	for _, e := range es {
		out = append(out, e.v)
	}
	return out
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// --- categories ---

type categories struct{ *db }

func (r *categories) List(context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := sorted(r.categories, false)
	for i := range out {
		out[i].GridImages = cloneList(out[i].GridImages)
	}
	return out, nil
}

func (r *categories) FindByID(_ context.Context, id string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	c := e.v
	c.GridImages = cloneList(c.GridImages)
	return &c, nil
}

func (r *categories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.categories {
		if e.v.Slug == slug {
			c := e.v
			c.GridImages = cloneList(c.GridImages)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *categories) slugTaken(slug, except string) bool {
	for id, e := range r.categories {
		if id != except && e.v.Slug == slug {
			return true
		}
	}
	return false
}

func (r *categories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(c.Slug, "") {
		return nil, fmt.Errorf("create category: %w", store.ErrDuplicate)
	}
	now := time.Now().UTC()
	v := *c
	v.ID = uuid.NewString()
	v.GridImages = cloneList(c.GridImages)
	v.CreatedAt, v.UpdatedAt = now, now
	r.categories[v.ID] = &entry[models.Category]{seq: r.next(), v: v}
	out := v
	out.GridImages = cloneList(v.GridImages)
	return &out, nil
}

func (r *categories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.categories[c.ID]
	if !ok {
		return nil, fmt.Errorf("update category: %w", store.ErrNotFound)
	}
	if r.slugTaken(c.Slug, c.ID) {
		return nil, fmt.Errorf("update category: %w", store.ErrDuplicate)
	}
	v := *c
	v.GridImages = cloneList(c.GridImages)
	v.CreatedAt = e.v.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	e.v = v
	out := v
	out.GridImages = cloneList(v.GridImages)
	return &out, nil
}

func (r *categories) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return fmt.Errorf("delete category: %w", store.ErrNotFound)
	}
	delete(r.categories, id)
	return nil
}

// --- projects ---

type projects struct{ *db }

func copyProject(p models.Project) *models.Project {
	p.Images = cloneList(p.Images)
	return &p
}

func (r *projects) List(_ context.Context, categoryID string) ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Project{}
	for _, p := range sorted(r.projects, true) {
		if categoryID == "" || p.CategoryID == categoryID {
			out = append(out, *copyProject(p))
		}
	}
	return out, nil
}

func (r *projects) FindByID(_ context.Context, id string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	return copyProject(e.v), nil
}

func (r *projects) FindByNameAndCategory(_ context.Context, name, categoryID string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range sorted(r.projects, false) {
		if p.Name == name && p.CategoryID == categoryID {
			return copyProject(p), nil
		}
	}
	return nil, nil
}

func (r *projects) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	v := *copyProject(*p)
	v.ID = uuid.NewString()
	v.CreatedAt, v.UpdatedAt = now, now
	r.projects[v.ID] = &entry[models.Project]{seq: r.next(), v: v}
	return copyProject(v), nil
}

func (r *projects) Update(_ context.Context, p *models.Project) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.projects[p.ID]
	if !ok {
		return nil, fmt.Errorf("update project: %w", store.ErrNotFound)
	}
	v := *copyProject(*p)
	v.CreatedAt = e.v.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	e.v = v
	return copyProject(v), nil
}

func (r *projects) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return fmt.Errorf("delete project: %w", store.ErrNotFound)
	}
	delete(r.projects, id)
	return nil
}

// --- home grid ---

type homeGrid struct{ *db }

func copySlot(s models.HomeGridSlot) *models.HomeGridSlot {
	s.CloudinaryPublicID = cloneStr(s.CloudinaryPublicID)
	return &s
}

func (r *homeGrid) list() []models.HomeGridSlot {
	out := make([]models.HomeGridSlot, 0, len(r.grid))
	for _, e := range r.grid {
		out = append(out, *copySlot(e.v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (r *homeGrid) List(context.Context) ([]models.HomeGridSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(), nil
}

func (r *homeGrid) FindByID(_ context.Context, id string) (*models.HomeGridSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.grid[id]
	if !ok {
		return nil, nil
	}
	return copySlot(e.v), nil
}

func (r *homeGrid) atPosition(position int) *entry[models.HomeGridSlot] {
	for _, e := range r.grid {
		if e.v.Position == position {
			return e
		}
	}
	return nil
}

func (r *homeGrid) FindByPosition(_ context.Context, position int) (*models.HomeGridSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e := r.atPosition(position); e != nil {
		return copySlot(e.v), nil
	}
	return nil, nil
}

func (r *homeGrid) UpsertAt(_ context.Context, slot *models.HomeGridSlot) (*models.HomeGridSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if e := r.atPosition(slot.Position); e != nil {
		e.v.Image = slot.Image
		e.v.CloudinaryPublicID = cloneStr(slot.CloudinaryPublicID)
		e.v.UpdatedAt = now
		return copySlot(e.v), nil
	}
	v := *copySlot(*slot)
	v.ID = uuid.NewString()
	v.CreatedAt, v.UpdatedAt = now, now
	r.grid[v.ID] = &entry[models.HomeGridSlot]{seq: r.next(), v: v}
	return copySlot(v), nil
}

func (r *homeGrid) Update(_ context.Context, slot *models.HomeGridSlot) (*models.HomeGridSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.grid[slot.ID]
	if !ok {
		return nil, fmt.Errorf("update grid slot: %w", store.ErrNotFound)
	}
	if other := r.atPosition(slot.Position); other != nil && other != e {
		return nil, fmt.Errorf("update grid slot: %w", store.ErrDuplicate)
	}
	e.v.Position = slot.Position
	e.v.Image = slot.Image
	e.v.CloudinaryPublicID = cloneStr(slot.CloudinaryPublicID)
	e.v.UpdatedAt = time.Now().UTC()
	return copySlot(e.v), nil
}

// Reorder builds the new grid aside and swaps it in only when every
// reference resolved.
func (r *homeGrid) Reorder(_ context.Context, assignments []models.GridAssignment) ([]models.HomeGridSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	next := map[string]*entry[models.HomeGridSlot]{}
	for _, a := range assignments {
		switch ref := a.Ref.(type) {
		case models.ExistingSlot:
			e, ok := r.grid[ref.ID]
			if !ok {
				return nil, fmt.Errorf("reorder slot %s: %w", ref.ID, store.ErrNotFound)
			}
			v := copySlot(e.v)
			a.Apply(v)
			v.UpdatedAt = now
			next[v.ID] = &entry[models.HomeGridSlot]{seq: e.seq, v: *v}
		case models.EmptySlot:
			v := models.HomeGridSlot{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
			a.Apply(&v)
			next[v.ID] = &entry[models.HomeGridSlot]{seq: r.next(), v: v}
		default:
			return nil, fmt.Errorf("reorder: unknown slot reference %T", a.Ref)
		}
	}
	r.grid = next
	return r.list(), nil
}

// --- contact ---

type contact struct{ *db }

func (r *contact) Get(_ context.Context, defaults models.ContactInfo) (*models.ContactInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.contact == nil {
		now := time.Now().UTC()
		c := defaults
		c.ID = uuid.NewString()
		c.CreatedAt, c.UpdatedAt = now, now
		r.contact = &c
	}
	c := *r.contact
	return &c, nil
}

func (r *contact) Save(_ context.Context, c *models.ContactInfo) (*models.ContactInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.contact == nil {
		return nil, fmt.Errorf("save contact: %w", store.ErrNotFound)
	}
	v := *c
	v.ID = r.contact.ID
	v.CreatedAt = r.contact.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	r.contact = &v
	out := v
	return &out, nil
}

// --- messages ---

type messages struct{ *db }

func (r *messages) List(context.Context) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sorted(r.messages, true), nil
}

func (r *messages) FindByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	m := e.v
	return &m, nil
}

func (r *messages) Create(_ context.Context, m *models.Message) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	v := *m
	v.ID = uuid.NewString()
	v.Read = false
	v.CreatedAt, v.UpdatedAt = now, now
	r.messages[v.ID] = &entry[models.Message]{seq: r.next(), v: v}
	out := v
	return &out, nil
}

func (r *messages) MarkRead(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.messages[id]
	if !ok {
		return nil, fmt.Errorf("mark message read: %w", store.ErrNotFound)
	}
	e.v.Read = true
	e.v.UpdatedAt = time.Now().UTC()
	m := e.v
	return &m, nil
}

func (r *messages) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return fmt.Errorf("delete message: %w", store.ErrNotFound)
	}
	delete(r.messages, id)
	return nil
}

// --- settings ---

type settings struct{ *db }

func copySetting(s *models.Setting) *models.Setting {
	v := *s
	v.Value = append(json.RawMessage(nil), s.Value...)
	return &v
}

func (r *settings) All(context.Context) ([]models.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Setting, 0, len(r.settings))
	for _, s := range r.settings {
		out = append(out, *copySetting(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *settings) Get(_ context.Context, key string) (*models.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[key]
	if !ok {
		return nil, nil
	}
	return copySetting(s), nil
}

func (r *settings) Set(_ context.Context, key string, value []byte) (*models.Setting, error) {
	if !json.Valid(value) {
		return nil, fmt.Errorf("set setting %q: value is not valid JSON", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	s, ok := r.settings[key]
	if !ok {
		s = &models.Setting{Key: key, CreatedAt: now}
		r.settings[key] = s
	}
	s.Value = append(json.RawMessage(nil), value...)
	s.UpdatedAt = now
	return copySetting(s), nil
}

// --- users ---

type users struct{ *db }

func copyUser(u models.User) *models.User {
	u.TOTPSecret = cloneStr(u.TOTPSecret)
	return &u
}

func (r *users) List(context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := sorted(r.users, true)
	for i := range out {
		out[i] = *copyUser(out[i])
	}
	return out, nil
}

func (r *users) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(e.v), nil
}

func (r *users) byUsername(username string) *entry[models.User] {
	username = models.NormalizeUsername(username)
	for _, e := range r.users {
		if e.v.Username == username {
			return e
		}
	}
	return nil
}

func (r *users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e := r.byUsername(username); e != nil {
		return copyUser(e.v), nil
	}
	return nil, nil
}

func (r *users) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byUsername(u.Username) != nil {
		return nil, fmt.Errorf("create user: %w", store.ErrDuplicate)
	}
	now := time.Now().UTC()
	v := *copyUser(*u)
	v.ID = uuid.NewString()
	v.Username = models.NormalizeUsername(u.Username)
	v.TOTPSecret, v.TOTPEnabled = nil, false
	v.CreatedAt, v.UpdatedAt = now, now
	r.users[v.ID] = &entry[models.User]{seq: r.next(), v: v}
	return copyUser(v), nil
}

func (r *users) Update(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.users[u.ID]
	if !ok {
		return nil, fmt.Errorf("update user: %w", store.ErrNotFound)
	}
	e.v.PasswordHash = u.PasswordHash
	e.v.Name = u.Name
	e.v.Role = u.Role
	e.v.IsActive = u.IsActive
	e.v.UpdatedAt = time.Now().UTC()
	return copyUser(e.v), nil
}

func (r *users) modify(op, id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	fn(&e.v)
	e.v.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *users) SetTOTPSecret(_ context.Context, id, secret string) error {
	return r.modify("set totp secret", id, func(u *models.User) {
		u.TOTPSecret = &secret
		u.TOTPEnabled = false
	})
}

func (r *users) EnableTOTP(_ context.Context, id string) error {
	return r.modify("enable totp", id, func(u *models.User) { u.TOTPEnabled = true })
}

func (r *users) ResetTOTP(_ context.Context, id string) error {
	return r.modify("reset totp", id, func(u *models.User) {
		u.TOTPSecret = nil
		u.TOTPEnabled = false
	})
}

func (r *users) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("delete user: %w", store.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}
