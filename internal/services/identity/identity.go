// Package identity отвечает за регистрацию, вход, проверку токенов доступа
// и правила обхода подписки для администраторов и VIP.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
	"github.com/magabrotheeeer/safezone/internal/lib/jwt"
	"github.com/magabrotheeeer/safezone/internal/lib/password"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/storage"
)

// TokenType — тип выдаваемого токена доступа.
const TokenType = "bearer"

// UserRepository описывает контракт для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser сохраняет пользователя; storage.ErrDuplicate, если email занят.
	CreateUser(ctx context.Context, user models.User) error
	// GetUserByID возвращает пользователя или storage.ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByEmail возвращает пользователя или storage.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUserAccess атомарно меняет флаги администратора и VIP.
	UpdateUserAccess(ctx context.Context, id string, upd models.AccessUpdate) error
}

// Cache описывает кеш пользователей, найденных по токену.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// RegisterRequest — данные для регистрации жителя.
type RegisterRequest struct {
	Name          string
	Email         string
	Password      string
	Address       models.Address
	ResidentNames []string
}

// AuthResult — пользователь и выданный ему токен.
type AuthResult struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

// Service реализует регистрацию, вход и разрешение токенов.
type Service struct {
	users    UserRepository
	cache    Cache
	jwtMaker jwt.Maker
	log      *slog.Logger
	now      func() time.Time
	cacheTTL time.Duration
}

// New создаёт Service. Если cache равен nil, пользователи не кешируются.
func New(users UserRepository, cache Cache, jwtMaker jwt.Maker, log *slog.Logger, now func() time.Time, cacheTTL time.Duration) *Service {
	return &Service{
		users:    users,
		cache:    cache,
		jwtMaker: jwtMaker,
		log:      log,
		now:      now,
		cacheTTL: cacheTTL,
	}
}

// Register создаёт нового пользователя. Владелец сервиса сразу получает
// права администратора и бессрочный VIP.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	const op = "identity.Register"

	email := NormalizeEmail(req.Email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.ErrDuplicateEmail
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         email,
		PasswordHash:  hashed,
		Address:       req.Address,
		ResidentNames: req.ResidentNames,
		CreatedAt:     s.now(),
	}
	if IsReservedOwner(email) {
		applyAccess(&user, ownerAccess)
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.IsAdmin {
		s.log.Info("owner account registered", slog.String("user_id", user.ID))
	}

	return s.issue(&user)
}

// Login проверяет пароль и выдаёт токен. Владелец сервиса при каждом входе
// повторно получает свои права, если они были утрачены.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*AuthResult, error) {
	const op = "identity.Login"

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	if err := s.reconcileOwner(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.issue(user)
}

// Resolve возвращает пользователя по токену доступа.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	const op = "identity.Resolve"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, apperr.CodeInvalidToken, err)
	}
	userID := claims.UserID()

	if s.cache != nil {
		var cached models.User
		found, err := s.cache.Get(ctx, cacheKey(userID), &cached)
		if err != nil {
			s.log.Warn("failed to read user from cache", slog.String("user_id", userID), sl.Err(err))
		} else if found {
			return &cached, nil
		}
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(userID), user, s.cacheTTL); err != nil {
			s.log.Warn("failed to cache user", slog.String("user_id", userID), sl.Err(err))
		}
	}
	return user, nil
}

// EnsureOwner повышает учётную запись владельца до администратора и
// бессрочного VIP, если она существует. Вызывается при старте процесса.
func (s *Service) EnsureOwner(ctx context.Context) error {
	const op = "identity.EnsureOwner"

	user, err := s.users.GetUserByEmail(ctx, ReservedOwnerEmail)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Info("owner account does not exist yet, it will be elevated on registration")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.reconcileOwner(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// InvalidateUser удаляет пользователя из кеша после изменения его прав.
func (s *Service) InvalidateUser(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate cached user", slog.String("user_id", userID), sl.Err(err))
	}
}

func (s *Service) reconcileOwner(ctx context.Context, user *models.User) error {
	if !IsReservedOwner(user.Email) || !needsOwnerElevation(user) {
		return nil
	}
	if err := s.users.UpdateUserAccess(ctx, user.ID, ownerAccess); err != nil {
		return err
	}
	applyAccess(user, ownerAccess)
	s.InvalidateUser(ctx, user.ID)
	s.log.Info("owner account elevated to permanent admin and vip", slog.String("user_id", user.ID))
	return nil
}

func (s *Service) issue(user *models.User) (*AuthResult, error) {
	token, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("identity.issue: %w", err)
	}
	return &AuthResult{User: user, AccessToken: token, TokenType: TokenType}, nil
}

func cacheKey(userID string) string {
	return "user:" + userID
}
