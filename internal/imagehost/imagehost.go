// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package imagehost pushes uploaded images to an external image host with a
// transformation profile applied. Cloudinary transforms on its side; the S3
// host transforms locally before storing.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// MaxUploadSize is the largest accepted source file (20 MB).
const MaxUploadSize = 20 << 20

var (
	// ErrUnsupportedType is returned for files that are not JPEG, PNG, GIF
	// or WebP images.
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrNotFound is returned when deleting an asset the host does not know.
	ErrNotFound = errors.New("image not found")
)

// Crop selects how an image is fitted into a profile's box.
type Crop string

const (
	// CropFill scales to cover the box and crops the overflow.
	CropFill Crop = "fill"
	// CropLimit scales down to fit inside the box and never upscales.
	CropLimit Crop = "limit"
)

// Profile describes where an image goes and how it is transformed.
type Profile struct {
	Name   string
	Folder string
	Width  int
	Height int
	Crop   Crop
}

var (
	// GridProfile is used for home-grid tiles.
	GridProfile = Profile{Name: "grid", Folder: "hs-architects/home-grid", Width: 800, Height: 800, Crop: CropFill}

	// ProjectProfile is used for project galleries.
	ProjectProfile = Profile{Name: "project", Folder: "hs-architects/projects", Width: 2000, Height: 2000, Crop: CropLimit}
)

// Transformation renders the profile as a Cloudinary transformation string.
func (p Profile) Transformation() string {
	return fmt.Sprintf("c_%s,w_%d,h_%d,q_auto,f_auto", p.Crop, p.Width, p.Height)
}

// Upload is an image file received from a client.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Result describes a stored image.
type Result struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Host stores and deletes images.
type Host interface {
	Name() string
	Upload(ctx context.Context, up Upload, p Profile) (*Result, error)
	Delete(ctx context.Context, publicID string) error
}

// Signature is the payload a browser needs for a direct signed upload.
type Signature struct {
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Folder    string `json:"folder"`
	PublicID  string `json:"publicId"`
}

// Signer is implemented by hosts that support direct browser uploads.
type Signer interface {
	SignUpload(publicID, folder string, at time.Time) (*Signature, error)
}

// RemoteUploader is implemented by hosts that can ingest an image from a
// URL or data URI without the bytes passing through this server first.
type RemoteUploader interface {
	UploadRemote(ctx context.Context, source, publicID, folder string) (*Result, error)
}

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Sniff detects the content type from the first bytes of data and rejects
// anything that is not an accepted image format.
func Sniff(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if !allowedTypes[ct] {
		return ct, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return ct, nil
}
