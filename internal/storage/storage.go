package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"listing-service/internal/domain"
)

// Image is an image file waiting to be uploaded.
type Image struct {
	Filename    string
	ContentType string
	// Name fixes the object name inside the folder; a random name is used when empty.
	Name string
	Body io.Reader
}

// Uploader hosts images in remote object storage under folder prefixes.
type Uploader interface {
	UploadOne(ctx context.Context, img Image, folder string) (domain.ImageRef, error)
	// UploadMany uploads images sequentially in order. each, when not nil, is
	// called after every successful upload; an error from it stops the loop.
	// On failure the refs uploaded so far are returned with the error.
	UploadMany(ctx context.Context, images []Image, folder string, each func(domain.ImageRef) error) ([]domain.ImageRef, error)
	// DeleteFolder removes every object under folder. Missing folders are not an error.
	DeleteFolder(ctx context.Context, folder string) error
}

// OfferFolder returns the folder scoping the images of one offer.
func OfferFolder(namespace, offerID string) string {
	return joinFolder(namespace, "offers", offerID)
}

// UserFolder returns the folder scoping the images of one user.
func UserFolder(namespace, userID string) string {
	return joinFolder(namespace, "users", userID)
}

func joinFolder(parts ...string) string {
	return strings.Trim(path.Join(parts...), "/")
}
