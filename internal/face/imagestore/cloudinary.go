// Package imagestore uploads face reference images to Cloudinary.
package imagestore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	id "hadir/pkg/domain"
)

// Cloudinary stores face images under a per-user public ID so re-uploads
// overwrite the previous reference image.
type Cloudinary struct {
	client *cloudinary.Cloudinary
}

// New builds a Cloudinary store from a cloudinary:// URL. Returns nil when
// the URL is empty (image storage not configured).
func New(url string) (*Cloudinary, error) {
	if url == "" {
		return nil, nil
	}
	client, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{client: client}, nil
}

// Upload stores the image and returns its public URL.
func (c *Cloudinary) Upload(ctx context.Context, userID id.UserID, image []byte) (string, error) {
	resp, err := c.client.Upload.Upload(ctx, bytes.NewReader(image), uploader.UploadParams{
		PublicID:  "faces/" + userID.String(),
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("upload face image: %w", err)
	}
	return resp.SecureURL, nil
}
