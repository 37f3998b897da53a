// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package storetest holds the behaviour every repository backend must share.
// Backend packages call Run from their tests with a factory that returns an
// empty store.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsarchitects/internal/models"
	"hsarchitects/internal/store"
)

// Factory returns a fresh, empty set of repositories for one subtest.
type Factory func(t *testing.T) *store.Repositories

// Options tunes the suite for backend limitations.
type Options struct {
	// SkipReorder disables the transactional reorder checks, for MongoDB
	// servers that are not part of a replica set.
	SkipReorder bool
}

// Run executes the full repository suite against the backend built by f.
func Run(t *testing.T, f Factory, opts Options) {
	t.Run("Categories", func(t *testing.T) { testCategories(t, f(t)) })
	t.Run("Projects", func(t *testing.T) { testProjects(t, f(t)) })
	t.Run("HomeGrid", func(t *testing.T) { testHomeGrid(t, f(t)) })
	t.Run("HomeGridReorder", func(t *testing.T) {
		if opts.SkipReorder {
			t.Skip("backend cannot run transactions")
		}
		testHomeGridReorder(t, f(t))
	})
	t.Run("HomeGridReorderKeepsUnsentFields", func(t *testing.T) {
		if opts.SkipReorder {
			t.Skip("backend cannot run transactions")
		}
		testHomeGridReorderKeepsUnsentFields(t, f(t))
	})
	t.Run("Contact", func(t *testing.T) { testContact(t, f(t)) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, f(t)) })
	t.Run("Settings", func(t *testing.T) { testSettings(t, f(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, f(t)) })
}

// missingID is well-formed for no backend in particular; every backend must
// treat it as a miss rather than an error.
const missingID = "does-not-exist"

func testCategories(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.Categories

	arch, err := r.Create(ctx, &models.Category{
		Name: "Architecture", Slug: "architecture", Description: "Buildings",
		GridImages: []string{"a.jpg", "", "c.jpg"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, arch.ID)
	assert.False(t, arch.CreatedAt.IsZero(), "createdAt should be set")
	assert.Equal(t, []string{"a.jpg", "", "c.jpg"}, arch.GridImages)
	assert.Equal(t, "", arch.Image)

	_, err = r.Create(ctx, &models.Category{Name: "Again", Slug: "architecture", Description: "x"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	wait()
	interiors, err := r.Create(ctx, &models.Category{Name: "Interiors", Slug: "interiors", Description: "Rooms"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, interiors.GridImages)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2, "duplicate create must not add a record")
	assert.Equal(t, arch.ID, list[0].ID, "categories are listed oldest first")

	got, err := r.FindBySlug(ctx, "interiors")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, interiors.ID, got.ID)

	got, err = r.FindByID(ctx, arch.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Buildings", got.Description)

	got, err = r.FindByID(ctx, missingID)
	require.NoError(t, err)
	assert.Nil(t, got)

	arch.Description = "Updated"
	updated, err := r.Update(ctx, arch)
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Description)
	assert.Equal(t, "architecture", updated.Slug)

	interiors.Slug = "architecture"
	_, err = r.Update(ctx, interiors)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = r.Update(ctx, &models.Category{ID: missingID, Name: "x", Slug: "y", Description: "z"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, r.Delete(ctx, arch.ID))
	assert.ErrorIs(t, r.Delete(ctx, arch.ID), store.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, missingID), store.ErrNotFound)
}

func testProjects(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.Projects

	villa, err := r.Create(ctx, &models.Project{
		Name: "Villa", CategoryID: "cat-1", Label: "Residential", Location: "Goa",
		Year: "2021", Image: "v1.jpg", Images: []string{"v1.jpg", "v2.jpg"},
		Description: "A house by the sea.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, villa.ID)
	assert.Equal(t, []string{"v1.jpg", "v2.jpg"}, villa.Images)
	assert.Equal(t, "Goa", villa.Location)

	wait()
	tower, err := r.Create(ctx, &models.Project{Name: "Tower", CategoryID: "cat-2", Label: "Commercial"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, tower.Images)

	all, err := r.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, tower.ID, all[0].ID, "projects are listed newest first")

	filtered, err := r.List(ctx, "cat-1")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, villa.ID, filtered[0].ID)

	found, err := r.FindByNameAndCategory(ctx, "Villa", "cat-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, villa.ID, found.ID)

	found, err = r.FindByNameAndCategory(ctx, "Villa", "cat-2")
	require.NoError(t, err)
	assert.Nil(t, found)

	villa.Title = "Villa by the Sea"
	updated, err := r.Update(ctx, villa)
	require.NoError(t, err)
	assert.Equal(t, "Villa by the Sea", updated.Title)

	_, err = r.Update(ctx, &models.Project{ID: missingID, Name: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, r.Delete(ctx, villa.ID))
	assert.ErrorIs(t, r.Delete(ctx, villa.ID), store.ErrNotFound)
}

func testHomeGrid(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.HomeGrid

	pid := "hs-architects/home-grid/abc"
	first, err := r.UpsertAt(ctx, &models.HomeGridSlot{Position: 4, Image: "one.jpg", CloudinaryPublicID: &pid})
	require.NoError(t, err)
	require.NotNil(t, first.CloudinaryPublicID)
	assert.Equal(t, pid, *first.CloudinaryPublicID)

	second, err := r.UpsertAt(ctx, &models.HomeGridSlot{Position: 4, Image: "two.jpg"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert at an occupied position keeps the slot")
	assert.Equal(t, "two.jpg", second.Image)
	assert.Nil(t, second.CloudinaryPublicID)

	other, err := r.UpsertAt(ctx, &models.HomeGridSlot{Position: 1, Image: "a.jpg"})
	require.NoError(t, err)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Position)
	assert.Equal(t, 4, list[1].Position)

	at, err := r.FindByPosition(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, first.ID, at.ID)

	at, err = r.FindByPosition(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, at)

	other.Position = 4
	_, err = r.Update(ctx, other)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	other.Position = 2
	other.Image = "moved.jpg"
	moved, err := r.Update(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)
	assert.Equal(t, "moved.jpg", moved.Image)

	_, err = r.Update(ctx, &models.HomeGridSlot{ID: missingID, Position: 3})
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := r.FindByID(ctx, missingID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testHomeGridReorder(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.HomeGrid

	var slots []*models.HomeGridSlot
	for p := 1; p <= 3; p++ {
		s, err := r.UpsertAt(ctx, &models.HomeGridSlot{Position: p, Image: fmt.Sprintf("%d.jpg", p)})
		require.NoError(t, err)
		slots = append(slots, s)
	}

	assignments := make([]models.GridAssignment, models.GridSize)
	for i := range assignments {
		assignments[i] = models.GridAssignment{
			Ref:      models.EmptySlot{Position: i + 1},
			Position: i + 1,
			Image:    str(fmt.Sprintf("new-%d.jpg", i+1)),
		}
	}
	// Swap the first and third slot; the second is dropped.
	assignments[0] = models.GridAssignment{Ref: models.ExistingSlot{ID: slots[2].ID}, Position: 1, Image: str("3.jpg")}
	assignments[2] = models.GridAssignment{Ref: models.ExistingSlot{ID: slots[0].ID}, Position: 3, Image: str("1.jpg")}

	grid, err := r.Reorder(ctx, assignments)
	require.NoError(t, err)
	require.Len(t, grid, models.GridSize)
	for i, s := range grid {
		assert.Equal(t, i+1, s.Position)
	}
	assert.Equal(t, slots[2].ID, grid[0].ID)
	assert.Equal(t, slots[0].ID, grid[2].ID)
	assert.Equal(t, "new-2.jpg", grid[1].Image)
	for _, s := range grid {
		assert.NotEqual(t, slots[1].ID, s.ID, "unlisted slot should be removed")
	}

	// A missing reference aborts the whole reorder.
	bad := make([]models.GridAssignment, len(assignments))
	copy(bad, assignments)
	bad[0] = models.GridAssignment{Ref: models.EmptySlot{Position: 1}, Position: 1, Image: str("x.jpg")}
	bad[8] = models.GridAssignment{Ref: models.ExistingSlot{ID: missingID}, Position: 9, Image: str("y.jpg")}
	_, err = r.Reorder(ctx, bad)
	assert.ErrorIs(t, err, store.ErrNotFound)

	after, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, models.GridSize)
	assert.Equal(t, slots[2].ID, after[0].ID, "failed reorder must leave the grid unchanged")
	assert.Equal(t, "new-9.jpg", after[8].Image)
}

func testHomeGridReorderKeepsUnsentFields(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.HomeGrid

	kept, err := r.UpsertAt(ctx, &models.HomeGridSlot{Position: 1, Image: "kept.jpg", CloudinaryPublicID: str("hs/kept")})
	require.NoError(t, err)
	cleared, err := r.UpsertAt(ctx, &models.HomeGridSlot{Position: 2, Image: "cleared.jpg", CloudinaryPublicID: str("hs/cleared")})
	require.NoError(t, err)

	assignments := make([]models.GridAssignment, models.GridSize)
	for i := range assignments {
		assignments[i] = models.GridAssignment{Ref: models.EmptySlot{Position: i + 1}, Position: i + 1}
	}
	// Neither field sent: both survive the move.
	assignments[4] = models.GridAssignment{Ref: models.ExistingSlot{ID: kept.ID}, Position: 5}
	// Public id sent as null, image sent: both are written.
	assignments[5] = models.GridAssignment{
		Ref:         models.ExistingSlot{ID: cleared.ID},
		Position:    6,
		Image:       str("replaced.jpg"),
		PublicIDSet: true,
	}

	grid, err := r.Reorder(ctx, assignments)
	require.NoError(t, err)
	require.Len(t, grid, models.GridSize)

	assert.Equal(t, kept.ID, grid[4].ID)
	assert.Equal(t, "kept.jpg", grid[4].Image)
	require.NotNil(t, grid[4].CloudinaryPublicID)
	assert.Equal(t, "hs/kept", *grid[4].CloudinaryPublicID)

	assert.Equal(t, cleared.ID, grid[5].ID)
	assert.Equal(t, "replaced.jpg", grid[5].Image)
	assert.Nil(t, grid[5].CloudinaryPublicID)

	// New slots start empty.
	assert.Equal(t, "", grid[0].Image)
	assert.Nil(t, grid[0].CloudinaryPublicID)
}

func str(s string) *string { return &s }

func testContact(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.Contact

	c, err := r.Get(ctx, models.DefaultContact)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.DefaultContact.Email, c.Email)
	assert.Equal(t, models.DefaultContact.Note, c.Note)

	again, err := r.Get(ctx, models.DefaultContact)
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID, "contact is a singleton")

	c.Email = "hello@example.com"
	c.Note = ""
	saved, err := r.Save(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "hello@example.com", saved.Email)
	assert.Equal(t, "", saved.Note)
	assert.Equal(t, c.ID, saved.ID)

	reread, err := r.Get(ctx, models.DefaultContact)
	require.NoError(t, err)
	assert.Equal(t, "hello@example.com", reread.Email)
}

func testMessages(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.Messages

	m1, err := r.Create(ctx, &models.Message{Email: "a@example.com", Message: "Hi"})
	require.NoError(t, err)
	assert.False(t, m1.Read)
	assert.Equal(t, "", m1.Phone)

	wait()
	m2, err := r.Create(ctx, &models.Message{Email: "b@example.com", Phone: "123", Message: "Hello", Read: true})
	require.NoError(t, err)
	assert.False(t, m2.Read, "new messages start unread")

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, m2.ID, list[0].ID, "messages are listed newest first")

	read, err := r.MarkRead(ctx, m1.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	read, err = r.MarkRead(ctx, m1.ID)
	require.NoError(t, err, "marking read twice is idempotent")
	assert.True(t, read.Read)

	_, err = r.MarkRead(ctx, missingID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := r.FindByID(ctx, m2.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hello", got.Message)

	require.NoError(t, r.Delete(ctx, m1.ID))
	assert.ErrorIs(t, r.Delete(ctx, m1.ID), store.ErrNotFound)
}

func testSettings(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.Settings

	st, err := r.Get(ctx, "projectsLayout")
	require.NoError(t, err)
	assert.Nil(t, st)

	values := map[string]string{
		"projectsLayout": `"grid"`,
		"hero":           `{"title":"Studio","count":3,"tags":["a","b"],"on":true}`,
		"limit":          `12`,
		"empty":          `null`,
	}
	for k, v := range values {
		saved, err := r.Set(ctx, k, []byte(v))
		require.NoError(t, err, k)
		assert.JSONEq(t, v, string(saved.Value), k)
	}

	saved, err := r.Set(ctx, "projectsLayout", []byte(`"list"`))
	require.NoError(t, err)
	assert.JSONEq(t, `"list"`, string(saved.Value))

	st, err = r.Get(ctx, "hero")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.JSONEq(t, values["hero"], string(st.Value))

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(values))
	for _, s := range all {
		assert.True(t, json.Valid(s.Value), "setting %s holds invalid JSON", s.Key)
	}

	_, err = r.Set(ctx, "broken", []byte(`{`))
	assert.Error(t, err)
}

func testUsers(t *testing.T, repos *store.Repositories) {
	ctx := context.Background()
	r := repos.Users

	alice, err := r.Create(ctx, &models.User{
		Username: "Alice", PasswordHash: "hash-1", Role: models.RoleEditor, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, "", alice.Name)
	assert.False(t, alice.TOTPEnabled)

	_, err = r.Create(ctx, &models.User{Username: "ALICE", PasswordHash: "x", Role: models.RoleEditor, IsActive: true})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got, err := r.FindByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "hash-1", got.PasswordHash)

	got, err = r.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	wait()
	bob, err := r.Create(ctx, &models.User{Username: "bob", PasswordHash: "hash-2", Name: "Bob", Role: models.RoleAdmin, IsActive: true})
	require.NoError(t, err)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, bob.ID, list[0].ID, "users are listed newest first")

	alice.Name = "Alice A."
	alice.IsActive = false
	alice.PasswordHash = "hash-3"
	updated, err := r.Update(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "hash-3", updated.PasswordHash)

	require.NoError(t, r.SetTOTPSecret(ctx, bob.ID, "JBSWY3DPEHPK3PXP"))
	got, err = r.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TOTPSecret)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", *got.TOTPSecret)
	assert.False(t, got.TOTPEnabled)

	require.NoError(t, r.EnableTOTP(ctx, bob.ID))
	got, err = r.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, got.TOTPEnabled)

	require.NoError(t, r.ResetTOTP(ctx, bob.ID))
	got, err = r.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TOTPSecret)
	assert.False(t, got.TOTPEnabled)

	assert.ErrorIs(t, r.EnableTOTP(ctx, missingID), store.ErrNotFound)

	require.NoError(t, r.Delete(ctx, alice.ID))
	assert.ErrorIs(t, r.Delete(ctx, alice.ID), store.ErrNotFound)
}

// wait separates creation timestamps on backends with millisecond clocks.
func wait() {
	time.Sleep(5 * time.Millisecond)
}
