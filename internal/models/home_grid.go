// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GridSize is the number of positions on the home-page grid.
const GridSize = 9

// tempIDPrefix marks client-side placeholder ids for slots that have not
// been stored yet ("temp-0" .. "temp-8").
const tempIDPrefix = "temp-"

// HomeGridSlot is one image on the home-page grid.
type HomeGridSlot struct {
	ID                 string    `json:"id"`
	Position           int       `json:"position"`
	Image              string    `json:"image"`
	CloudinaryPublicID *string   `json:"cloudinaryPublicId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// SlotRef says which grid slot a write targets: a position with no stored
// slot yet (EmptySlot) or a stored slot (ExistingSlot).
type SlotRef interface {
	isSlotRef()
}

// EmptySlot targets a position that may or may not already hold a slot.
type EmptySlot struct {
	Position int
}

// ExistingSlot targets a stored slot by id.
type ExistingSlot struct {
	ID string
}

func (EmptySlot) isSlotRef()    {}
func (ExistingSlot) isSlotRef() {}

// ParseSlotRef decodes a wire id into a SlotRef. An absent id or a "temp-N"
// placeholder yields EmptySlot; position wins when set (> 0), otherwise a
// placeholder falls back to N+1 and an absent id to 1. Any other id is an
// ExistingSlot.
func ParseSlotRef(id string, position int) (SlotRef, error) {
	if id == "" {
		if position <= 0 {
			position = 1
		}
		return EmptySlot{Position: position}, nil
	}

	if rest, ok := strings.CutPrefix(id, tempIDPrefix); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid placeholder slot id %q", id)
		}
		if position <= 0 {
			position = n + 1
		}
		return EmptySlot{Position: position}, nil
	}

	return ExistingSlot{ID: id}, nil
}

// ValidPosition reports whether p is a position on the grid.
func ValidPosition(p int) bool {
	return p >= 1 && p <= GridSize
}

// GridAssignment places a slot at a grid position during a reorder. Image
// and the public id are written only when sent: an existing slot keeps its
// stored values for fields left out, a new slot starts with "" and null.
type GridAssignment struct {
	Ref                SlotRef
	Position           int
	Image              *string
	CloudinaryPublicID *string
	PublicIDSet        bool
}

// Apply moves s to the assignment's position and copies the sent fields.
func (a GridAssignment) Apply(s *HomeGridSlot) {
	s.Position = a.Position
	if a.Image != nil {
		s.Image = *a.Image
	}
	if a.PublicIDSet {
		if a.CloudinaryPublicID == nil {
			s.CloudinaryPublicID = nil
		} else {
			id := *a.CloudinaryPublicID
			s.CloudinaryPublicID = &id
		}
	}
}
