package storage

import (
	"context"
	"fmt"
	"time"
)

// Target sizes
const (
	TourImageWidth  = 2000
	TourImageHeight = 1333
	UserPhotoSize   = 500
)

// Images stores resized uploads and returns the stored file names.
type Images struct {
	processor *ImageProcessor
	store     ObjectStore
	now       func() time.Time
}

func NewImages(processor *ImageProcessor, store ObjectStore) *Images {
	return &Images{processor: processor, store: store, now: time.Now}
}

// TourCover stores tour-<id>-<unix>-cover.jpeg.
func (i *Images) TourCover(ctx context.Context, tourID string, data []byte) (string, error) {
	name := fmt.Sprintf("tour-%s-%d-cover.jpeg", tourID, i.now().Unix())
	return name, i.put(ctx, "tours/"+name, data, TourImageWidth, TourImageHeight)
}

// TourImages stores tour-<id>-<unix>-<n>.jpeg for n starting at 1.
func (i *Images) TourImages(ctx context.Context, tourID string, files [][]byte) ([]string, error) {
	ts := i.now().Unix()
	names := make([]string, 0, len(files))
	for n, data := range files {
		name := fmt.Sprintf("tour-%s-%d-%d.jpeg", tourID, ts, n+1)
		if err := i.put(ctx, "tours/"+name, data, TourImageWidth, TourImageHeight); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// UserPhoto stores user-<id>-<unix>.jpeg.
func (i *Images) UserPhoto(ctx context.Context, userID string, data []byte) (string, error) {
	name := fmt.Sprintf("user-%s-%d.jpeg", userID, i.now().Unix())
	return name, i.put(ctx, "users/"+name, data, UserPhotoSize, UserPhotoSize)
}

// DeleteTour removes every stored image of a tour.
func (i *Images) DeleteTour(ctx context.Context, tourID string) error {
	return i.store.DeleteByPrefix(ctx, "tours/tour-"+tourID+"-")
}

func (i *Images) put(ctx context.Context, key string, data []byte, w, h int) error {
	resized, err := i.processor.Resize(data, w, h)
	if err != nil {
		return err
	}
	if _, err := i.store.Upload(ctx, key, resized, "image/jpeg"); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}
