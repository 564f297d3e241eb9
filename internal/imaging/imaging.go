package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Decoding limits. A small compressed file can still declare a huge canvas.
const (
	MaxDimension = 10000
	MaxPixels    = 25_000_000
)

var (
	ErrInvalidSize   = errors.New("size must be positive")
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// Processor normalizes uploaded images.
type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// Square decodes reader and scales it to exactly size x size pixels, ignoring the
// source aspect ratio. PNG input stays PNG, everything else is encoded as JPEG.
// The returned extension includes the leading dot.
func (p *Processor) Square(reader io.Reader, size int) ([]byte, string, error) {
	if size <= 0 {
		return nil, "", ErrInvalidSize
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	// Check the declared canvas before allocating it
	w, h, err := Dimensions(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if w > MaxDimension || h > MaxDimension || w*h > MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, w, h)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if format == "png" {
		err = png.Encode(&buf, dst)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode PNG: %w", err)
		}
		return buf.Bytes(), ".png", nil
	}

	err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), ".jpg", nil
}

// Dimensions returns the width and height of an encoded image.
func Dimensions(reader io.Reader) (int, int, error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
