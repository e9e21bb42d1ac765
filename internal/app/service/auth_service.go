package service

import (
	"context"
	"errors"
	"time"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"github.com/ptnguyen/coffeecorner-backend/pkg/redis"
	"github.com/ptnguyen/coffeecorner-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// Account is the role-agnostic view of an authenticated identity.
type Account struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	ProfileImage string `json:"profile_image"`
	Role         string `json:"role"`
}

type AuthService interface {
	Register(email, password, name, phone string) (*model.User, *util.TokenPair, error)
	// Login resolves the identity against admins first, then customers.
	Login(email, password string) (*Account, *util.TokenPair, error)
	Logout(ctx context.Context, token string, expiry time.Duration) error
	GetAccount(id uint, role string) (*Account, error)
	UpdateProfile(id uint, role, name, phone, profileImage string) (*Account, error)
	ChangePassword(id uint, role, currentPassword, newPassword string) error
}

type authService struct {
	userRepo      repository.UserRepository
	adminRepo     repository.AdminRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		adminRepo:     adminRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) emailTaken(email string) (bool, error) {
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if _, err := s.adminRepo.FindByEmail(email); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return false, nil
}

func (s *authService) Register(email, password, name, phone string) (*model.User, *util.TokenPair, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
		"name":  name,
	})

	// One email maps to one identity across both tables.
	taken, err := s.emailTaken(email)
	if err != nil {
		logger.Error("Failed to check existing account", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if taken {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Phone:        phone,
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		model.RoleCustomer,
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   email,
		})
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*Account, *util.TokenPair, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	// Admins take precedence when the same email somehow exists twice.
	admin, err := s.adminRepo.FindByEmail(email)
	if err == nil {
		if !util.VerifyPassword(admin.PasswordHash, password) {
			logger.Warn("Login failed: invalid password", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return s.issueTokens(&Account{
			ID:           admin.ID,
			Email:        admin.Email,
			Name:         admin.Name,
			Phone:        admin.Phone,
			ProfileImage: admin.ProfileImage,
			Role:         model.RoleAdmin,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to find admin", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error for unknown email and wrong password.
			logger.Warn("Login failed: account not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrInvalidCredentials
	}

	return s.issueTokens(&Account{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Phone:        user.Phone,
		ProfileImage: user.ProfileImage,
		Role:         model.RoleCustomer,
	})
}

func (s *authService) issueTokens(account *Account) (*Account, *util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		account.ID,
		account.Email,
		account.Role,
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"account_id": account.ID,
			"role":       account.Role,
		})
		return nil, nil, err
	}

	logger.Info("Login successful", map[string]interface{}{
		"account_id": account.ID,
		"role":       account.Role,
	})
	return account, tokens, nil
}

func (s *authService) Logout(ctx context.Context, token string, expiry time.Duration) error {
	if redis.GetClient() == nil {
		logger.Warn("Logout without Redis: token expires naturally")
		return nil
	}
	return redis.BlacklistToken(ctx, token, expiry)
}

func (s *authService) GetAccount(id uint, role string) (*Account, error) {
	if role == model.RoleAdmin {
		admin, err := s.adminRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return &Account{
			ID:           admin.ID,
			Email:        admin.Email,
			Name:         admin.Name,
			Phone:        admin.Phone,
			ProfileImage: admin.ProfileImage,
			Role:         model.RoleAdmin,
		}, nil
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &Account{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Phone:        user.Phone,
		ProfileImage: user.ProfileImage,
		Role:         model.RoleCustomer,
	}, nil
}

func (s *authService) UpdateProfile(id uint, role, name, phone, profileImage string) (*Account, error) {
	logger.Info("Updating profile", map[string]interface{}{
		"account_id": id,
		"role":       role,
	})

	if role == model.RoleAdmin {
		admin, err := s.adminRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if name != "" {
			admin.Name = name
		}
		if phone != "" {
			admin.Phone = phone
		}
		if profileImage != "" {
			admin.ProfileImage = profileImage
		}
		if err := s.adminRepo.Update(admin); err != nil {
			return nil, err
		}
		return s.GetAccount(id, role)
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	if phone != "" {
		user.Phone = phone
	}
	if profileImage != "" {
		user.ProfileImage = profileImage
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return s.GetAccount(id, role)
}

func (s *authService) ChangePassword(id uint, role, currentPassword, newPassword string) error {
	logger.Info("Changing password", map[string]interface{}{
		"account_id": id,
		"role":       role,
	})

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if role == model.RoleAdmin {
		admin, err := s.adminRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if !util.VerifyPassword(admin.PasswordHash, currentPassword) {
			return ErrWrongPassword
		}
		admin.PasswordHash = hashed
		return s.adminRepo.Update(admin)
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrWrongPassword
	}
	user.PasswordHash = hashed
	return s.userRepo.Update(user)
}
