// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package imagehost

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore is the part of storage.Client the S3 host needs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
}

// S3 transforms images locally and stores them in an S3-compatible bucket.
// Public IDs are object keys without the ".jpg" suffix, mirroring
// Cloudinary's folder/name form.
type S3 struct {
	store ObjectStore
}

// NewS3 creates an S3 host on top of store.
func NewS3(store ObjectStore) *S3 {
	return &S3{store: store}
}

func (s *S3) Name() string { return "s3" }

func (s *S3) Upload(ctx context.Context, up Upload, p Profile) (*Result, error) {
	out, w, h, err := Transform(up.Data, p)
	if err != nil {
		return nil, fmt.Errorf("s3 transform: %w", err)
	}

	publicID := p.Folder + "/" + uuid.NewString()
	key := publicID + ".jpg"
	if err := s.store.Put(ctx, key, "image/jpeg", out); err != nil {
		return nil, err
	}

	return &Result{
		PublicID: publicID,
		URL:      s.store.FileURL(key),
		Width:    w,
		Height:   h,
	}, nil
}

func (s *S3) Delete(ctx context.Context, publicID string) error {
	if publicID == "" || strings.Contains(publicID, "..") {
		return fmt.Errorf("s3 delete %q: %w", publicID, ErrNotFound)
	}
	return s.store.Delete(ctx, publicID+".jpg")
}
