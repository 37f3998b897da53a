// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"hsarchitects/internal/models"
)

type messageRequest struct {
	Email   string `json:"email" validate:"required,email,max=320"`
	Phone   string `json:"phone" validate:"max=50"`
	Message string `json:"message" validate:"required,max=5000"`
}

type messageReadRequest struct {
	ID string `json:"id"`
}

type settingRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ContactGet returns the contact block, creating the defaults on first read.
func (c *Content) ContactGet(w http.ResponseWriter, r *http.Request) {
	info, err := c.contact.Get(r.Context(), models.DefaultContact)
	if err != nil {
		slog.Error("get contact failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch contact info")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// ContactUpdate merges the request into the contact block. Empty email,
// phone and address keep their values; a present note always replaces.
func (c *Content) ContactUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.ContactPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Email != "" {
		if err := validate.Var(patch.Email, "email"); err != nil {
			writeError(w, http.StatusBadRequest, "email must be a valid email address")
			return
		}
	}

	info, err := c.contact.Get(r.Context(), models.DefaultContact)
	if err != nil {
		slog.Error("get contact failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update contact info")
		return
	}
	patch.Apply(info)

	saved, err := c.contact.Save(r.Context(), info)
	if err != nil {
		slog.Error("save contact failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update contact info")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// MessagesList returns contact-form submissions, newest first.
func (c *Content) MessagesList(w http.ResponseWriter, r *http.Request) {
	list, err := c.messages.List(r.Context())
	if err != nil {
		slog.Error("list messages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MessageCreate stores a contact-form submission.
func (c *Content) MessageCreate(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Email == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Email and message are required")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	msg, err := c.messages.Create(r.Context(), &models.Message{
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Message: req.Message,
	})
	if err != nil {
		slog.Error("create message failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	slog.Info("contact message received", "id", msg.ID)
	writeJSON(w, http.StatusCreated, msg)
}

// MessageMarkRead flags a message as read. Repeating it is harmless.
func (c *Content) MessageMarkRead(w http.ResponseWriter, r *http.Request) {
	var req messageReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Message ID is required")
		return
	}
	msg, err := c.messages.MarkRead(r.Context(), req.ID)
	if err != nil {
		writeStoreError(w, err, "mark message read", "Message not found", "", "Failed to update message")
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// MessageDelete removes a message.
func (c *Content) MessageDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Message ID is required")
		return
	}
	if err := c.messages.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "delete message", "Message not found", "", "Failed to delete message")
		return
	}
	writeSuccess(w)
}

// SettingsGet returns every stored setting, or one key with its default
// when nothing is stored. It never answers 404.
func (c *Content) SettingsGet(w http.ResponseWriter, r *http.Request) {
	if key := r.URL.Query().Get("key"); key != "" {
		s, err := c.settings.Get(r.Context(), key)
		if err != nil {
			slog.Error("get setting failed", "error", err, "key", key)
			writeError(w, http.StatusInternalServerError, "Failed to fetch settings")
			return
		}
		if s == nil {
			def := models.DefaultSetting(key)
			s = &def
		}
		writeJSON(w, http.StatusOK, s)
		return
	}

	all, err := c.settings.All(r.Context())
	if err != nil {
		slog.Error("list settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// SettingsPut upserts one setting.
func (c *Content) SettingsPut(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "Setting key is required")
		return
	}

	value := req.Value
	if len(value) == 0 {
		value = json.RawMessage("null")
	}

	s, err := c.settings.Set(r.Context(), req.Key, value)
	if err != nil {
		slog.Error("set setting failed", "error", err, "key", req.Key)
		writeError(w, http.StatusInternalServerError, "Failed to update setting")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
