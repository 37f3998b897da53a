// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package models

import "time"

// ContactInfo is the singleton block of studio contact details.
type ContactInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultContact is stored the first time contact details are read.
var DefaultContact = ContactInfo{
	Email:   "studio@hsarchitects.com",
	Phone:   "+91 98765 43210",
	Address: "Mumbai, India",
	Note:    "For project inquiries, collaborations, or general questions—reach out via email.",
}

// ContactPatch is a contact update. Empty email, phone or address keep the
// stored value; a present note always replaces it, even when empty.
type ContactPatch struct {
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Note    *string `json:"note"`
}

// Apply merges p into c.
func (p ContactPatch) Apply(c *ContactInfo) {
	if p.Email != "" {
		c.Email = p.Email
	}
	if p.Phone != "" {
		c.Phone = p.Phone
	}
	if p.Address != "" {
		c.Address = p.Address
	}
	if p.Note != nil {
		c.Note = *p.Note
	}
}
