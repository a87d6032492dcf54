package identity

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/auth"
	"github.com/calculation/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userFixture struct {
	repo      *MockUserRepository
	blacklist *auth.MemoryTokenBlacklist
	images    *storage.MemoryObjectStorage
	notifier  *recordingNotifier
	service   *UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		repo:      new(MockUserRepository),
		blacklist: auth.NewMemoryTokenBlacklist(),
		images:    storage.NewMemoryObjectStorage("http://files.test"),
		notifier:  &recordingNotifier{},
	}
	f.service = NewUserService(f.repo, f.blacklist, time.Hour, f.images, 32, f.notifier, zap.NewNop())
	return f
}

func pngImage(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user and sends the welcome mail", func(t *testing.T) {
		f := newUserFixture()
		f.repo.On("ExistsByUsername", ctx, "Jane", (*uuid.UUID)(nil)).Return(false, nil)
		f.repo.On("ExistsByEmail", ctx, "jane@example.com", (*uuid.UUID)(nil)).Return(false, nil)
		f.repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := f.service.Create(ctx, CreateUserRequest{
			Username: "Jane",
			Email:    "jane@example.com",
			Password: testPassword,
			Notify:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, "jane", resp.Username)
		assert.Equal(t, "ROLE_USER", resp.Role)
		assert.True(t, resp.Enabled)
		assert.Equal(t, []string{"jane@example.com"}, f.notifier.welcome)
	})

	t.Run("can create a disabled user", func(t *testing.T) {
		f := newUserFixture()
		disabled := false
		f.repo.On("ExistsByUsername", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.repo.On("ExistsByEmail", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.repo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, CreateUserRequest{
			Username: "jane", Email: "jane@example.com", Password: testPassword,
			Role: "ROLE_ADMIN", Enabled: &disabled,
		})
		require.NoError(t, err)
		assert.False(t, resp.Enabled)
		assert.Equal(t, "ROLE_ADMIN", resp.Role)
		assert.Empty(t, f.notifier.welcome)
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		f := newUserFixture()
		f.repo.On("ExistsByUsername", ctx, "john", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := f.service.Create(ctx, CreateUserRequest{Username: "john", Email: "x@example.com", Password: testPassword})
		requireDomainCode(t, err, "USERNAME_EXISTS")
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a weak password", func(t *testing.T) {
		f := newUserFixture()
		f.repo.On("ExistsByUsername", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.repo.On("ExistsByEmail", ctx, mock.Anything, mock.Anything).Return(false, nil)

		_, err := f.service.Create(ctx, CreateUserRequest{Username: "jane", Email: "jane@example.com", Password: "onlyletters"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("disabling a user revokes the user's tokens", func(t *testing.T) {
		f := newUserFixture()
		user := newTestUser(t)
		f.repo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.repo.On("ExistsByUsername", ctx, "john", &user.ID).Return(false, nil)
		f.repo.On("ExistsByEmail", ctx, "john@example.com", &user.ID).Return(false, nil)
		f.repo.On("Save", ctx, user).Return(nil)

		resp, err := f.service.Update(ctx, user.ID, UpdateUserRequest{
			Username: "john", Email: "john@example.com", Role: "ROLE_USER", Enabled: false,
		})
		require.NoError(t, err)
		assert.False(t, resp.Enabled)
		assert.Equal(t, "ROLE_USER", resp.Role)

		revoked, err := f.blacklist.IsUserRevoked(ctx, user.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("returns USER_NOT_FOUND for a missing user", func(t *testing.T) {
		f := newUserFixture()
		id := uuid.New()
		f.repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.Update(ctx, id, UpdateUserRequest{Username: "x", Email: "x@example.com", Role: "ROLE_USER"})
		requireDomainCode(t, err, "USER_NOT_FOUND")
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses to delete the current user", func(t *testing.T) {
		f := newUserFixture()
		id := uuid.New()
		err := f.service.Delete(ctx, id, id)
		requireDomainCode(t, err, "CANNOT_DELETE_SELF")
	})

	t.Run("deletes the user and the picture", func(t *testing.T) {
		f := newUserFixture()
		user := newTestUser(t)
		key := storage.UserImageKey(user.ID)
		require.NoError(t, f.images.Put(ctx, key, "image/jpeg", []byte("jpeg")))
		user.SetImage(key)
		f.repo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.repo.On("Delete", ctx, user.ID).Return(nil)

		require.NoError(t, f.service.Delete(ctx, user.ID, uuid.New()))
		exists, err := f.images.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestUserService_UploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a square thumbnail", func(t *testing.T) {
		f := newUserFixture()
		user := newTestUser(t)
		f.repo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.repo.On("Save", ctx, user).Return(nil)

		resp, err := f.service.UploadImage(ctx, user.ID, pngImage(t, 80, 40))
		require.NoError(t, err)
		assert.True(t, resp.HasImage)
		assert.True(t, strings.HasPrefix(resp.ImageURL, "http://files.test/users/"))

		data, contentType, ok := f.images.Get(storage.UserImageKey(user.ID))
		require.True(t, ok)
		assert.Equal(t, "image/jpeg", contentType)
		img, _, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 32, img.Bounds().Dx())
		assert.Equal(t, 32, img.Bounds().Dy())
	})

	t.Run("rejects data that is not an image", func(t *testing.T) {
		f := newUserFixture()
		user := newTestUser(t)
		f.repo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := f.service.UploadImage(ctx, user.ID, strings.NewReader("not an image"))
		requireDomainCode(t, err, "INVALID_IMAGE")
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	admin := newTestUser(t)
	enabled := true
	expected := func(filter shared.Filter) bool {
		return filter.Page == 1 && filter.PageSize == 20 && filter.OrderBy == "username" &&
			filter.Filters["role"] == "ROLE_ADMIN" && filter.Filters["enabled"] == true
	}
	f.repo.On("FindAll", ctx, mock.MatchedBy(expected)).Return([]identity.User{*admin}, nil)
	f.repo.On("Count", ctx, mock.MatchedBy(expected)).Return(int64(1), nil)

	users, total, err := f.service.List(ctx, UserListFilter{Role: "ROLE_ADMIN", Enabled: &enabled})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "john", users[0].Username)
}
