package service

import (
	"context"
	"errors"

	"github.com/Varun5711/taskapi/internal/auth"
	"github.com/Varun5711/taskapi/internal/logger"
	usermodel "github.com/Varun5711/taskapi/internal/models/user"
	"github.com/Varun5711/taskapi/internal/storage"
	"github.com/Varun5711/taskapi/internal/validation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UserService is the credential store: registration, login, token
// verification and profile lookup.
type UserService struct {
	userStorage storage.UserStore
	jwtManager  *auth.JWTManager
	bcryptCost  int
	dummyHash   string
	log         *logger.Logger
}

func NewUserService(userStorage storage.UserStore, jwtManager *auth.JWTManager, bcryptCost int, log *logger.Logger) *UserService {
	dummyHash, err := auth.NewDummyHash(bcryptCost)
	if err != nil {
		log.Warn("Failed to build dummy password hash: %v", err)
	}

	return &UserService{
		userStorage: userStorage,
		jwtManager:  jwtManager,
		bcryptCost:  bcryptCost,
		dummyHash:   dummyHash,
		log:         log,
	}
}

func (s *UserService) Register(ctx context.Context, req *usermodel.CreateUserRequest) (*usermodel.AuthResponse, error) {
	if err := validation.ValidateRegistration(req.Email, req.Password, req.Name); err != nil {
		return nil, invalidInput(err)
	}

	if _, err := s.userStorage.GetUserByEmail(req.Email); err == nil {
		return nil, status.Error(codes.AlreadyExists, MsgUserExists)
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, internalf("failed to check existing user: %v", err)
	}

	passwordHash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, internalf("failed to hash password: %v", err)
	}

	// a concurrent registration may have claimed the email while hashing
	user, err := s.userStorage.CreateUser(req, passwordHash)
	if errors.Is(err, storage.ErrEmailTaken) {
		return nil, status.Error(codes.AlreadyExists, MsgUserExists)
	}
	if err != nil {
		return nil, internalf("failed to create user: %v", err)
	}

	token, expiresAt, err := s.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, internalf("failed to generate token: %v", err)
	}

	s.log.Info("Registered user %s", user.ID)

	return &usermodel.AuthResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Login returns the same error for an unknown email and a wrong password.
func (s *UserService) Login(ctx context.Context, req *usermodel.LoginRequest) (*usermodel.AuthResponse, error) {
	if err := validation.ValidateLogin(req.Email, req.Password); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.userStorage.GetUserByEmail(req.Email)
	if errors.Is(err, storage.ErrUserNotFound) {
		auth.BurnPasswordCheck(s.dummyHash, req.Password)
		return nil, status.Error(codes.Unauthenticated, MsgInvalidCredentials)
	}
	if err != nil {
		return nil, internalf("failed to get user: %v", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, status.Error(codes.Unauthenticated, MsgInvalidCredentials)
	}

	token, expiresAt, err := s.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, internalf("failed to generate token: %v", err)
	}

	return &usermodel.AuthResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify resolves a bearer token to the principal id it was issued for.
func (s *UserService) Verify(token string) (string, error) {
	if token == "" {
		return "", status.Error(codes.Unauthenticated, MsgAuthRequired)
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		s.log.Debug("Rejected token: %v", err)
		return "", status.Error(codes.Unauthenticated, MsgInvalidToken)
	}

	return claims.UserID, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*usermodel.Profile, error) {
	user, err := s.userStorage.GetUserByID(userID)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, status.Error(codes.NotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, internalf("failed to get user: %v", err)
	}

	return user.Profile(), nil
}
