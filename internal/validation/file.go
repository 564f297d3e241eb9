package validation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrFileTooLarge   = errors.New("file too large")
	ErrFileType       = errors.New("invalid file type")
	ErrFileExtension  = errors.New("invalid file extension")
	ErrFileUnreadable = errors.New("failed to read file")
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 5 << 20 // 5MB

// AvatarConstraints covers every format the image pipeline can decode.
var AvatarConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	},
	MaxSize: MaxAvatarSize,
}

// ValidateFile checks size, sniffed content type and extension of an upload.
// The content type comes from the first 512 bytes, so a renamed file is still caught.
// file is rewound before returning.
func ValidateFile(file io.ReadSeeker, filename string, size int64, c FileConstraints) error {
	if size > c.MaxSize {
		return fmt.Errorf("%w: maximum size is %d MB", ErrFileTooLarge, c.MaxSize/(1<<20))
	}

	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}

	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}

	detected := http.DetectContentType(buffer[:n])
	if !c.AllowedMimeTypes[detected] {
		return fmt.Errorf("%w (detected: %s)", ErrFileType, detected)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !c.AllowedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrFileExtension, ext)
	}

	return nil
}
