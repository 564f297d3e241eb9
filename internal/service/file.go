package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/templui/accounts/internal/imaging"
	"github.com/templui/accounts/internal/storage"
	"golang.org/x/sync/semaphore"
)

const avatarFolder = "avatars"

// FileService normalizes avatars and hands them to storage.
type FileService struct {
	storage    storage.Storage
	processor  *imaging.Processor
	avatarSize int
	workers    *semaphore.Weighted
}

func NewFileService(storage storage.Storage, processor *imaging.Processor, avatarSize int, workers *semaphore.Weighted) *FileService {
	return &FileService{
		storage:    storage,
		processor:  processor,
		avatarSize: avatarSize,
		workers:    workers,
	}
}

// SaveAvatar resizes file to the configured square and stores it as
// avatars/<userID>_<name>. It returns the reference to record on the account.
func (s *FileService) SaveAvatar(ctx context.Context, userID, originalName string, file io.Reader) (string, error) {
	release, err := acquire(ctx, s.workers)
	if err != nil {
		return "", err
	}
	data, ext, err := s.processor.Square(file, s.avatarSize)
	release()
	if err != nil {
		return "", fmt.Errorf("failed to process avatar: %w", err)
	}

	storagePath := path.Join(avatarFolder, AvatarFilename(userID, originalName, ext))

	err = s.storage.Save(ctx, storagePath, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to save avatar: %w", err)
	}

	return s.storage.URL(storagePath), nil
}

// RemoveAvatar deletes an avatar previously stored for userID. References that
// point anywhere else, such as the gravatar default, are left alone.
func (s *FileService) RemoveAvatar(ctx context.Context, userID, ref string) error {
	storagePath, ok := storedAvatarPath(userID, ref)
	if !ok {
		return nil
	}
	return s.storage.Delete(ctx, storagePath)
}

// storedAvatarPath recovers avatars/<userID>_<name> from a reference returned by
// storage.URL, which is either the bare path or a URL ending in it.
func storedAvatarPath(userID, ref string) (string, bool) {
	prefix := avatarFolder + "/" + userID + "_"
	i := strings.Index(ref, prefix)
	if i < 0 || (i > 0 && ref[i-1] != '/') {
		return "", false
	}
	return ref[i:], true
}

// AvatarFilename keeps the uploaded name but swaps the extension when the
// stored encoding differs, so a .webp upload saved as JPEG ends in .jpg.
func AvatarFilename(userID, originalName, ext string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "avatar"
	}

	current := strings.ToLower(filepath.Ext(base))
	if !sameFormat(current, ext) {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	}

	return userID + "_" + base
}

func sameFormat(a, b string) bool {
	norm := func(e string) string {
		if e == ".jpeg" {
			return ".jpg"
		}
		return e
	}
	return norm(a) == norm(b)
}
