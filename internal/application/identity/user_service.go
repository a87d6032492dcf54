package identity

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/auth"
	"github.com/calculation/backend/internal/infrastructure/media"
	"github.com/calculation/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// imageURLExpiration is the validity of the user picture links
const imageURLExpiration = time.Hour

// WelcomeNotifier greets newly created users
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, user *identity.User) error
}

// UserService handles user management
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	tokenTTL  time.Duration
	images    storage.ObjectStorage
	imageSize int
	notifier  WelcomeNotifier
	logger    *zap.Logger
}

// NewUserService creates a new UserService. tokenTTL is the refresh token
// lifetime, used to revoke the tokens of disabled users.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	tokenTTL time.Duration,
	images storage.ObjectStorage,
	imageSize int,
	notifier WelcomeNotifier,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		tokenTTL:  tokenTTL,
		images:    images,
		imageSize: imageSize,
		notifier:  notifier,
		logger:    logger,
	}
}

// List retrieves a page of users
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "username"
		domainFilter.OrderDir = "asc"
	}
	if filter.Role != "" {
		domainFilter.Filters["role"] = filter.Role
	}
	if filter.Enabled != nil {
		domainFilter.Filters["enabled"] = *filter.Enabled
	}

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = s.toResponse(ctx, &users[i])
	}
	return responses, total, nil
}

// GetByID retrieves a user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	response := s.toResponse(ctx, user)
	return &response, nil
}

// Create creates a user and optionally sends the welcome mail
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role := identity.RoleUser
	if req.Role != "" {
		parsed, err := identity.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}
	if err := s.ensureUnique(ctx, req.Username, req.Email, nil); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	if req.Enabled != nil && !*req.Enabled {
		user.Disable()
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	if req.Notify && s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, user); err != nil {
			// the account exists, the mail can be sent again with a reset
			s.logger.Warn("Failed to send welcome mail", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	response := s.toResponse(ctx, user)
	return &response, nil
}

// Update edits a user. Disabling a user revokes the user's tokens.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, req.Username, req.Email, &id); err != nil {
		return nil, err
	}
	if err := user.Update(req.Username, req.Email, role); err != nil {
		return nil, err
	}

	disabled := user.Enabled && !req.Enabled
	if req.Enabled {
		user.Enable()
	} else {
		user.Disable()
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if disabled {
		s.revoke(ctx, user)
	}

	response := s.toResponse(ctx, user)
	return &response, nil
}

// SetEnabled enables or disables a user
func (s *UserService) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if enabled {
		user.Enable()
	} else {
		user.Disable()
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if !enabled {
		s.revoke(ctx, user)
	}
	response := s.toResponse(ctx, user)
	return &response, nil
}

// SetPassword replaces a user's password without the old one
func (s *UserService) SetPassword(ctx context.Context, id uuid.UUID, req SetPasswordRequest) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}
	if err := user.SetPassword(req.Password); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.revoke(ctx, user)
	return nil
}

// Delete deletes a user. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id, currentUserID uuid.UUID) error {
	if id == currentUserID {
		return shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if user.ImagePath != "" {
		if err := s.images.Delete(ctx, user.ImagePath); err != nil {
			s.logger.Warn("Failed to delete user image", zap.String("key", user.ImagePath), zap.Error(err))
		}
	}
	s.revoke(ctx, user)
	return nil
}

// UploadImage stores a square thumbnail of the picture as the user's image
func (s *UserService) UploadImage(ctx context.Context, id uuid.UUID, r io.Reader) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	thumb, err := media.Thumbnail(r, s.imageSize)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_IMAGE", err.Error())
	}
	key := storage.UserImageKey(user.ID)
	if err := s.images.Put(ctx, key, media.ContentType, thumb); err != nil {
		return nil, err
	}
	user.SetImage(key)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	response := s.toResponse(ctx, user)
	return &response, nil
}

// DeleteImage removes the user's image
func (s *UserService) DeleteImage(ctx context.Context, id uuid.UUID) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}
	if user.ImagePath == "" {
		return nil
	}
	if err := s.images.Delete(ctx, user.ImagePath); err != nil {
		return err
	}
	user.SetImage("")
	return s.userRepo.Save(ctx, user)
}

func (s *UserService) toResponse(ctx context.Context, user *identity.User) UserResponse {
	response := ToUserResponse(user)
	if user.ImagePath != "" && s.images != nil {
		url, _, err := s.images.DownloadURL(ctx, user.ImagePath, imageURLExpiration)
		if err != nil {
			s.logger.Warn("Failed to sign user image URL", zap.String("key", user.ImagePath), zap.Error(err))
		} else {
			response.ImageURL = url
		}
	}
	return response
}

func (s *UserService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ensureUnique(ctx context.Context, username, email string, excludeID *uuid.UUID) error {
	exists, err := s.userRepo.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
	}
	return nil
}

func (s *UserService) revoke(ctx context.Context, user *identity.User) {
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.tokenTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
