package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/accounts/internal/imaging"
	"github.com/templui/accounts/internal/model"
	"golang.org/x/sync/semaphore"
)

type userFixture struct {
	svc     *UserService
	users   *fakeUserRepository
	storage *memoryStorage
	user    *model.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:   newFakeUserRepository(),
		storage: newMemoryStorage(),
	}
	files := NewFileService(f.storage, imaging.NewProcessor(0), 250, semaphore.NewWeighted(1))
	f.svc = NewUserService(f.users, files)

	f.user = &model.User{ID: uuid.New().String(), Email: "a@x.com", Subscription: model.PlanStarter, Verify: true}
	require.NoError(t, f.users.Create(context.Background(), f.user))
	return f
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUserService_Current(t *testing.T) {
	f := newUserFixture(t)
	assert.Equal(t, model.PublicUser{Email: "a@x.com", Subscription: model.PlanStarter}, f.svc.Current(f.user))
}

func TestUserService_UpdateSubscription(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	updated, err := f.svc.UpdateSubscription(ctx, f.user.ID, model.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, updated.Subscription)
	assert.True(t, updated.Verify, "other fields untouched")
}

func TestUserService_UpdateSubscriptionErrors(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateSubscription(ctx, "123", model.PlanPro)
	require.Equal(t, KindBadRequest, KindOf(err))
	assert.Equal(t, "123 is not valid id", err.Error())

	_, err = f.svc.UpdateSubscription(ctx, uuid.New().String(), model.PlanPro)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateSubscription(ctx, f.user.ID, "gold")
	assert.Equal(t, KindBadRequest, KindOf(err))

	f.users.err = errors.New("db down")
	_, err = f.svc.UpdateSubscription(ctx, f.user.ID, model.PlanPro)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestUserService_UpdateAvatar(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	data := pngImage(t, 800, 300)
	ref, err := f.svc.UpdateAvatar(ctx, f.user, bytes.NewReader(data), "me.png", int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "avatars/"+f.user.ID+"_me.png", ref)

	stored, ok := f.storage.get(ref)
	require.True(t, ok)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 250, cfg.Width)
	assert.Equal(t, 250, cfg.Height)

	user, err := f.users.ByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, ref, user.AvatarURL)
}

func TestUserService_UpdateAvatarReplacesPreviousFile(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	data := pngImage(t, 20, 20)
	first, err := f.svc.UpdateAvatar(ctx, f.user, bytes.NewReader(data), "old.png", int64(len(data)))
	require.NoError(t, err)

	current, err := f.users.ByID(ctx, f.user.ID)
	require.NoError(t, err)

	second, err := f.svc.UpdateAvatar(ctx, current, bytes.NewReader(data), "new.png", int64(len(data)))
	require.NoError(t, err)

	_, ok := f.storage.get(first)
	assert.False(t, ok, "previous avatar should be removed")
	_, ok = f.storage.get(second)
	assert.True(t, ok)
}

func TestStoredAvatarPath(t *testing.T) {
	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{ref: "avatars/u1_me.png", want: "avatars/u1_me.png", ok: true},
		{ref: "https://bucket.s3.us-east-1.amazonaws.com/avatars/u1_me.jpg", want: "avatars/u1_me.jpg", ok: true},
		{ref: "//www.gravatar.com/avatar/abc", ok: false},
		{ref: "avatars/u2_me.png", ok: false},
		{ref: "xavatars/u1_me.png", ok: false},
		{ref: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := storedAvatarPath("u1", tt.ref)
		assert.Equal(t, tt.ok, ok, tt.ref)
		assert.Equal(t, tt.want, got, tt.ref)
	}
}

func TestUserService_UpdateAvatarRejectsNonImage(t *testing.T) {
	f := newUserFixture(t)

	data := []byte("definitely not an image")
	_, err := f.svc.UpdateAvatar(context.Background(), f.user, bytes.NewReader(data), "me.png", int64(len(data)))
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, err = f.svc.UpdateAvatar(context.Background(), f.user, nil, "", 0)
	assert.ErrorIs(t, err, ErrMissingAvatar)
}

func TestUserService_UpdateAvatarRejectsHugeCanvas(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	// 1x1 PNG whose header declares 30000x30000
	data := pngImage(t, 1, 1)
	binary.BigEndian.PutUint32(data[16:20], 30000)
	binary.BigEndian.PutUint32(data[20:24], 30000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	_, err := f.svc.UpdateAvatar(ctx, f.user, bytes.NewReader(data), "me.png", int64(len(data)))
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))
	assert.ErrorIs(t, err, imaging.ErrImageTooLarge)

	user, err := f.users.ByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, user.AvatarURL)
}

func TestUserService_UpdateAvatarStorageFailure(t *testing.T) {
	f := newUserFixture(t)
	f.storage.err = errors.New("disk full")

	data := pngImage(t, 10, 10)
	_, err := f.svc.UpdateAvatar(context.Background(), f.user, bytes.NewReader(data), "me.png", int64(len(data)))
	assert.Equal(t, KindInternal, KindOf(err))

	user, err := f.users.ByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, user.AvatarURL)
}

func TestFileService_SaveAvatarJPEG(t *testing.T) {
	storage := newMemoryStorage()
	files := NewFileService(storage, imaging.NewProcessor(0), 64, nil)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 90)), nil))

	ref, err := files.SaveAvatar(context.Background(), "u1", "photo.jpeg", &buf)
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1_photo.jpeg", ref)
}

func TestAvatarFilename(t *testing.T) {
	assert.Equal(t, "u1_me.png", AvatarFilename("u1", "me.png", ".png"))
	assert.Equal(t, "u1_me.JPG", AvatarFilename("u1", "me.JPG", ".jpg"))
	assert.Equal(t, "u1_me.jpg", AvatarFilename("u1", "me.webp", ".jpg"))
	assert.Equal(t, "u1_evil.png", AvatarFilename("u1", "../../evil.png", ".png"))
	assert.Equal(t, "u1_evil.png", AvatarFilename("u1", `..\..\evil.png`, ".png"))
	assert.Equal(t, "u1_avatar.png", AvatarFilename("u1", "", ".png"))
}
