package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"tropharbour-backend/internal/shared/apperror"
)

const msgNotAnImage = "Not an image! Please upload only images."

type ImageProcessor struct {
	MaxSize int64 // bytes
	Quality int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: 10 * 1024 * 1024, Quality: 95}
}

// ValidateImage rejects anything that does not decode as an image.
func (p *ImageProcessor) ValidateImage(data []byte) error {
	if int64(len(data)) > p.MaxSize {
		return apperror.Validation(fmt.Sprintf("Image exceeds %dMB", p.MaxSize/(1024*1024)))
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return apperror.Wrap(apperror.KindValidation, msgNotAnImage, err)
	}
	return nil
}

// Resize crops to the target aspect ratio around the centre and encodes
// the result as JPEG.
func (p *ImageProcessor) Resize(data []byte, width, height int) ([]byte, error) {
	if err := p.ValidateImage(data); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, msgNotAnImage, err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	b := new(bytes.Buffer)
	if err := jpeg.Encode(b, resized, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("cannot encode image: %w", err)
	}
	return b.Bytes(), nil
}
