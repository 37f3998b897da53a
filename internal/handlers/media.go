package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hsarchitects/internal/imagehost"
)

// defaultFolder is used by the signed and remote upload endpoints when the
// client does not name one.
const defaultFolder = "hs-architects"

// Media groups the image upload proxy handlers. host is nil when no image
// host is configured; every route then answers 503.
type Media struct {
	host imagehost.Host
	now  func() time.Time
}

// NewMedia creates a new Media handler group.
func NewMedia(host imagehost.Host) *Media {
	return &Media{host: host, now: time.Now}
}

type remoteUploadRequest struct {
	Image    string `json:"image" validate:"required"`
	PublicID string `json:"publicId"`
	Folder   string `json:"folder"`
}

type uploadResponse struct {
	Success bool `json:"success"`
	*imagehost.Result
}

// UploadGridImage uploads a home-grid tile (800x800, cropped to fill).
func (m *Media) UploadGridImage(w http.ResponseWriter, r *http.Request) {
	m.upload(w, r, imagehost.GridProfile)
}

// UploadProjectImage uploads a project gallery image (at most 2000x2000,
// never cropped).
func (m *Media) UploadProjectImage(w http.ResponseWriter, r *http.Request) {
	m.upload(w, r, imagehost.ProjectProfile)
}

func (m *Media) upload(w http.ResponseWriter, r *http.Request, p imagehost.Profile) {
	if m.host == nil {
		writeError(w, http.StatusServiceUnavailable, "Image hosting is not configured")
		return
	}

	// Limit request body to MaxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, imagehost.MaxUploadSize+64<<10)
	if err := r.ParseMultipartForm(imagehost.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20 MB.")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > imagehost.MaxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20 MB.")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, imagehost.MaxUploadSize+1))
	if err != nil {
		slog.Error("read upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	if len(data) > imagehost.MaxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20 MB.")
		return
	}

	contentType, err := imagehost.Sniff(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported file type. Use JPEG, PNG, GIF or WebP.")
		return
	}

	res, err := m.host.Upload(r.Context(), imagehost.Upload{
		Data:        data,
		ContentType: contentType,
		Filename:    header.Filename,
	}, p)
	if err != nil {
		slog.Error("image upload failed", "error", err, "host", m.host.Name(), "profile", p.Name, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	slog.Info("image uploaded", "host", m.host.Name(), "profile", p.Name, "public_id", res.PublicID, "size", len(data))
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Result: res})
}

// SignUpload returns the parameters a browser needs to upload straight to
// the host.
func (m *Media) SignUpload(w http.ResponseWriter, r *http.Request) {
	if m.host == nil {
		writeError(w, http.StatusServiceUnavailable, "Image hosting is not configured")
		return
	}
	signer, ok := m.host.(imagehost.Signer)
	if !ok {
		writeError(w, http.StatusNotImplemented, fmt.Sprintf("Signed uploads are not supported by the %s host", m.host.Name()))
		return
	}

	q := r.URL.Query()
	publicID := strings.TrimSpace(q.Get("publicId"))
	if publicID == "" {
		writeError(w, http.StatusBadRequest, "publicId is required")
		return
	}
	folder := strings.TrimSpace(q.Get("folder"))
	if folder == "" {
		folder = defaultFolder
	}

	sig, err := signer.SignUpload(publicID, folder, m.now())
	if err != nil {
		slog.Error("sign upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate signature")
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

// UploadRemote uploads an image given as a URL or data URI.
func (m *Media) UploadRemote(w http.ResponseWriter, r *http.Request) {
	if m.host == nil {
		writeError(w, http.StatusServiceUnavailable, "Image hosting is not configured")
		return
	}
	uploader, ok := m.host.(imagehost.RemoteUploader)
	if !ok {
		writeError(w, http.StatusNotImplemented, fmt.Sprintf("Remote uploads are not supported by the %s host", m.host.Name()))
		return
	}

	var req remoteUploadRequest
	if !bind(w, r, &req) {
		return
	}
	if req.Folder == "" {
		req.Folder = defaultFolder
	}

	res, err := uploader.UploadRemote(r.Context(), req.Image, req.PublicID, req.Folder)
	if err != nil {
		slog.Error("remote upload failed", "error", err, "host", m.host.Name())
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"publicId": res.PublicID,
		"url":      res.URL,
	})
}

// DeleteImage removes an asset from the host.
func (m *Media) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if m.host == nil {
		writeError(w, http.StatusServiceUnavailable, "Image hosting is not configured")
		return
	}
	publicID := r.URL.Query().Get("publicId")
	if publicID == "" {
		writeError(w, http.StatusBadRequest, "publicId is required")
		return
	}

	if err := m.host.Delete(r.Context(), publicID); err != nil {
		if errors.Is(err, imagehost.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		slog.Error("image delete failed", "error", err, "public_id", publicID)
		writeError(w, http.StatusInternalServerError, "Failed to delete image")
		return
	}
	slog.Info("image deleted", "host", m.host.Name(), "public_id", publicID)
	writeSuccess(w)
}
