// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"hsarchitects/internal/models"
	"hsarchitects/internal/store"
)

type gridSlotRequest struct {
	ID                 string           `json:"id"`
	Position           int              `json:"position"`
	Image              *string          `json:"image"`
	CloudinaryPublicID optional[string] `json:"cloudinaryPublicId"`
}

type gridReorderRequest struct {
	Images []*gridSlotRequest `json:"images"`
}

// emptyGridSlot pads a partially filled grid. It has no stored record.
type emptyGridSlot struct {
	ID                 *string `json:"id"`
	Position           int     `json:"position"`
	Image              string  `json:"image"`
	CloudinaryPublicID *string `json:"cloudinaryPublicId"`
}

// HomeGridList returns the grid sorted by position. With ?fill=true the
// response always has nine entries, empty positions carrying id null.
func (c *Content) HomeGridList(w http.ResponseWriter, r *http.Request) {
	slots, err := c.homeGrid.List(r.Context())
	if err != nil {
		slog.Error("list home grid failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch home grid images")
		return
	}
	if r.URL.Query().Get("fill") != "true" {
		writeJSON(w, http.StatusOK, slots)
		return
	}

	byPos := make(map[int]models.HomeGridSlot, len(slots))
	for _, s := range slots {
		byPos[s.Position] = s
	}
	filled := make([]any, 0, models.GridSize)
	for p := 1; p <= models.GridSize; p++ {
		if s, ok := byPos[p]; ok {
			filled = append(filled, s)
			continue
		}
		filled = append(filled, emptyGridSlot{Position: p})
	}
	writeJSON(w, http.StatusOK, filled)
}

// HomeGridPut writes a single slot. Placeholder ids ("temp-N") and absent
// ids upsert at the position; stored ids are updated in place.
func (c *Content) HomeGridPut(w http.ResponseWriter, r *http.Request) {
	var req gridSlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" && req.Position == 0 {
		writeError(w, http.StatusBadRequest, "Image ID or position is required")
		return
	}

	ref, err := models.ParseSlotRef(req.ID, req.Position)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image ID")
		return
	}

	switch ref := ref.(type) {
	case models.EmptySlot:
		if !models.ValidPosition(ref.Position) {
			writeError(w, http.StatusBadRequest, "Position must be between 1 and 9")
			return
		}
		slot := &models.HomeGridSlot{Position: ref.Position, CloudinaryPublicID: req.CloudinaryPublicID.Value}
		if req.Image != nil {
			slot.Image = *req.Image
		}
		saved, err := c.homeGrid.UpsertAt(r.Context(), slot)
		if err != nil {
			writeStoreError(w, err, "upsert grid slot", "Image not found", "Position already taken", "Failed to update home grid image")
			return
		}
		writeJSON(w, http.StatusOK, saved)

	case models.ExistingSlot:
		slot, err := c.homeGrid.FindByID(r.Context(), ref.ID)
		if err != nil {
			slog.Error("find grid slot failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update home grid image")
			return
		}
		if slot == nil {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		if req.Position != 0 {
			if !models.ValidPosition(req.Position) {
				writeError(w, http.StatusBadRequest, "Position must be between 1 and 9")
				return
			}
			slot.Position = req.Position
		}
		if req.Image != nil {
			slot.Image = *req.Image
		}
		if req.CloudinaryPublicID.Set {
			slot.CloudinaryPublicID = req.CloudinaryPublicID.Value
		}
		saved, err := c.homeGrid.Update(r.Context(), slot)
		if err != nil {
			writeStoreError(w, err, "update grid slot", "Image not found", "Position already taken", "Failed to update home grid image")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// HomeGridReorder replaces the whole grid with exactly nine entries in one
// transaction. Entry i lands at position i+1; null entries become empty
// slots and stored slots left out are removed. Stored slots keep the image
// and public id an entry omits.
func (c *Content) HomeGridReorder(w http.ResponseWriter, r *http.Request) {
	var req gridReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Images) != models.GridSize {
		writeError(w, http.StatusBadRequest, "Exactly 9 images are required")
		return
	}

	seen := make(map[string]bool, models.GridSize)
	assignments := make([]models.GridAssignment, 0, models.GridSize)
	for i, img := range req.Images {
		pos := i + 1
		if img == nil {
			img = &gridSlotRequest{}
		}
		ref, err := models.ParseSlotRef(img.ID, pos)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid image ID")
			return
		}
		if existing, ok := ref.(models.ExistingSlot); ok {
			if seen[existing.ID] {
				writeError(w, http.StatusBadRequest, "Duplicate image ID")
				return
			}
			seen[existing.ID] = true
		} else {
			ref = models.EmptySlot{Position: pos}
		}

		assignments = append(assignments, models.GridAssignment{
			Ref:                ref,
			Position:           pos,
			Image:              img.Image,
			CloudinaryPublicID: img.CloudinaryPublicID.Value,
			PublicIDSet:        img.CloudinaryPublicID.Set,
		})
	}

	slots, err := c.homeGrid.Reorder(r.Context(), assignments)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		slog.Error("reorder home grid failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to reorder home grid images")
		return
	}
	slog.Info("home grid reordered", "slots", len(slots))
	writeJSON(w, http.StatusOK, slots)
}
