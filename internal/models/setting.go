// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// Setting is a site-wide key/value pair. Value holds arbitrary JSON.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"createdAt,omitzero"`
	UpdatedAt time.Time       `json:"updatedAt,omitzero"`
}

// Setting keys known to the public site.
const (
	SettingProjectsLayout = "projectsLayout"
)

var settingDefaults = map[string]json.RawMessage{
	SettingProjectsLayout: json.RawMessage(`"list"`),
}

// DefaultSetting returns the fallback for key. Keys without a default resolve
// to a JSON null value.
func DefaultSetting(key string) Setting {
	v, ok := settingDefaults[key]
	if !ok {
		v = json.RawMessage("null")
	}
	return Setting{Key: key, Value: v}
}
