// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package models

import "time"

// Message is an inbound contact-form submission.
type Message struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
