package repository

import "context"

// ImageProber loads an image and reports its natural pixel area.
type ImageProber interface {
	Probe(ctx context.Context, url string) (int, error)
}
