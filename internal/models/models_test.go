package models

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestParseSlotRef(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		position int
		want     SlotRef
		wantErr  bool
	}{
		{name: "absent id uses position", id: "", position: 5, want: EmptySlot{Position: 5}},
		{name: "absent id defaults to 1", id: "", position: 0, want: EmptySlot{Position: 1}},
		{name: "placeholder uses position", id: "temp-3", position: 4, want: EmptySlot{Position: 4}},
		{name: "placeholder falls back to N+1", id: "temp-3", position: 0, want: EmptySlot{Position: 4}},
		{name: "placeholder zero", id: "temp-0", want: EmptySlot{Position: 1}},
		{name: "stored id", id: "6650c1f2a1b2c3d4e5f60718", position: 2, want: ExistingSlot{ID: "6650c1f2a1b2c3d4e5f60718"}},
		{name: "malformed placeholder", id: "temp-x", wantErr: true},
		{name: "negative placeholder", id: "temp--1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSlotRef(tt.id, tt.position)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSlotRef(%q, %d) = %#v, want error", tt.id, tt.position, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSlotRef(%q, %d): %v", tt.id, tt.position, err)
			}
			if got != tt.want {
				t.Errorf("ParseSlotRef(%q, %d) = %#v, want %#v", tt.id, tt.position, got, tt.want)
			}
		})
	}
}

func TestValidPosition(t *testing.T) {
	for p := -1; p <= 10; p++ {
		want := p >= 1 && p <= 9
		if got := ValidPosition(p); got != want {
			t.Errorf("ValidPosition(%d) = %v, want %v", p, got, want)
		}
	}
}

func TestProjectPatchSyncsCover(t *testing.T) {
	p := &Project{Name: "Villa", Image: "old.jpg", Images: []string{"old.jpg"}}

	ProjectPatch{Images: &[]string{"a.jpg", "b.jpg"}}.Apply(p)
	if p.Image != "a.jpg" {
		t.Errorf("Image = %q, want %q", p.Image, "a.jpg")
	}

	// An explicit cover is overridden while the gallery has images.
	ProjectPatch{Image: strPtr("cover.jpg")}.Apply(p)
	if p.Image != "a.jpg" {
		t.Errorf("Image = %q, want %q", p.Image, "a.jpg")
	}

	// Emptying the gallery keeps the last cover.
	ProjectPatch{Images: &[]string{}}.Apply(p)
	if p.Image != "a.jpg" {
		t.Errorf("Image = %q, want %q", p.Image, "a.jpg")
	}
}

func TestProjectDisplayTitle(t *testing.T) {
	p := Project{Name: "Villa"}
	if got := p.DisplayTitle(); got != "Villa" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "Villa")
	}
	p.Title = "Villa by the Sea"
	if got := p.DisplayTitle(); got != "Villa by the Sea" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "Villa by the Sea")
	}
}

func TestCategoryPatchApply(t *testing.T) {
	c := &Category{Name: "Architecture", Slug: "architecture", Description: "d"}

	CategoryPatch{Description: strPtr("updated")}.Apply(c)
	if c.Name != "Architecture" || c.Description != "updated" {
		t.Errorf("got %+v", c)
	}
	if c.GridImages == nil {
		t.Error("GridImages should be normalized to an empty slice")
	}

	b, _ := json.Marshal(c)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if _, ok := m["gridImages"].([]any); !ok {
		t.Errorf("gridImages serialized as %v, want []", m["gridImages"])
	}
}

func TestContactPatchApply(t *testing.T) {
	c := DefaultContact

	ContactPatch{Email: "new@example.com"}.Apply(&c)
	if c.Email != "new@example.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if c.Phone != DefaultContact.Phone || c.Note != DefaultContact.Note {
		t.Errorf("unset fields changed: %+v", c)
	}

	ContactPatch{Note: strPtr("")}.Apply(&c)
	if c.Note != "" {
		t.Errorf("Note = %q, want empty", c.Note)
	}
}

func TestDefaultSetting(t *testing.T) {
	if got := string(DefaultSetting(SettingProjectsLayout).Value); got != `"list"` {
		t.Errorf("projectsLayout default = %s, want %q", got, `"list"`)
	}
	if got := string(DefaultSetting("unknownKey").Value); got != "null" {
		t.Errorf("unknown default = %s, want null", got)
	}
}

func TestGridAssignmentApply(t *testing.T) {
	stored := func() *HomeGridSlot {
		return &HomeGridSlot{ID: "s1", Position: 4, Image: "old.jpg", CloudinaryPublicID: strPtr("hs/old")}
	}

	s := stored()
	GridAssignment{Position: 2}.Apply(s)
	if s.Position != 2 || s.Image != "old.jpg" || s.CloudinaryPublicID == nil || *s.CloudinaryPublicID != "hs/old" {
		t.Errorf("unsent fields changed: %+v", s)
	}

	s = stored()
	GridAssignment{Position: 1, Image: strPtr(""), PublicIDSet: true}.Apply(s)
	if s.Image != "" || s.CloudinaryPublicID != nil {
		t.Errorf("sent fields not written: %+v", s)
	}

	id := "hs/new"
	s = stored()
	GridAssignment{Position: 1, CloudinaryPublicID: &id, PublicIDSet: true}.Apply(s)
	id = "changed"
	if s.CloudinaryPublicID == nil || *s.CloudinaryPublicID != "hs/new" {
		t.Errorf("public id = %v, want a copy of hs/new", s.CloudinaryPublicID)
	}
}
