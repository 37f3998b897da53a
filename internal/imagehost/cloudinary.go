// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package imagehost

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads to a Cloudinary product environment.
type Cloudinary struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiKey    string
	apiSecret string
}

// NewCloudinary creates a Cloudinary host from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &Cloudinary{cld: cld, cloudName: cloudName, apiKey: apiKey, apiSecret: apiSecret}, nil
}

// setUploadPrefix points API calls at another base URL.
func (c *Cloudinary) setUploadPrefix(prefix string) {
	c.cld.Config.API.UploadPrefix = prefix
}

func (c *Cloudinary) Name() string { return "cloudinary" }

// Upload sends the bytes as a base64 data URI together with the profile's
// transformation.
func (c *Cloudinary) Upload(ctx context.Context, up Upload, p Profile) (*Result, error) {
	dataURI := "data:" + up.ContentType + ";base64," + base64.StdEncoding.EncodeToString(up.Data)

	resp, err := c.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder:         p.Folder,
		ResourceType:   "image",
		Transformation: p.Transformation(),
	})
	return uploadResult(resp, err)
}

// UploadRemote asks Cloudinary to fetch source, which may be a URL or a
// data URI.
func (c *Cloudinary) UploadRemote(ctx context.Context, source, publicID, folder string) (*Result, error) {
	resp, err := c.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       folder,
		ResourceType: "image",
	})
	return uploadResult(resp, err)
}

func uploadResult(resp *uploader.UploadResult, err error) (*Result, error) {
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return &Result{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
		Width:    resp.Width,
		Height:   resp.Height,
	}, nil
}

// Delete destroys an asset by public ID.
func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	if resp.Result == "not found" {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, ErrNotFound)
	}
	return nil
}

// SignUpload signs the parameters a browser sends for a direct upload of
// folder/publicID.
func (c *Cloudinary) SignUpload(publicID, folder string, at time.Time) (*Signature, error) {
	if publicID == "" {
		return nil, errors.New("public id is required")
	}
	ts := at.Unix()
	fullID := folder + "/" + publicID

	sig, err := api.SignParameters(url.Values{
		"timestamp": []string{strconv.FormatInt(ts, 10)},
		"public_id": []string{fullID},
	}, c.apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary sign: %w", err)
	}

	return &Signature{
		Timestamp: ts,
		Signature: sig,
		CloudName: c.cloudName,
		APIKey:    c.apiKey,
		Folder:    folder,
		PublicID:  fullID,
	}, nil
}
