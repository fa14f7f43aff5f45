package service

import (
	"context"
	"io"
)

type Uploader interface {
	// Upload stores file under folder/publicID and returns its delivery URL.
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
	// TransformURL builds the delivery URL of an uploaded image with a
	// transformation applied, e.g. "c_fill,g_auto,w_1200,h_630".
	TransformURL(publicID, transformation string) (string, error)
}
