package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelmate/backend/database"
	"travelmate/backend/logger"
	"travelmate/backend/models"
	"travelmate/backend/utils"
	"travelmate/backend/validators"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration, login and profiles.
type AccountService struct {
	users     UserRepository
	jwtSecret string
	log       *logger.Logger
}

func NewAccountService(users UserRepository, jwtSecret string, log *logger.Logger) *AccountService {
	return &AccountService{users: users, jwtSecret: jwtSecret, log: log}
}

// normalizeEmail is applied to every address before it reaches storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validators.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Chats:     []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.WithContext(ctx).WithField("user_id", user.ID.Hex()).Info("User registered")
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validators.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Token: token,
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

func (s *AccountService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AccountService) Get(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// UpdateProfile changes the profile of email; only its owner may do so.
func (s *AccountService) UpdateProfile(ctx context.Context, requester, email string, upd models.ProfileUpdate) (*models.User, error) {
	email = normalizeEmail(email)
	if requester == "" || normalizeEmail(requester) != email {
		return nil, ErrForbidden
	}
	if err := validators.Struct(upd); err != nil {
		return nil, err
	}
	user, err := s.users.UpdateProfile(ctx, email, upd)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
