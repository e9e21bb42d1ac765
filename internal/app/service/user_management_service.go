package service

import (
	"errors"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"github.com/ptnguyen/coffeecorner-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrAccountInUse = errors.New("account has related records and cannot be deleted")
	ErrInvalidRole  = errors.New("invalid role")
)

// ManagedAccount is one row of the unified back-office account listing.
type ManagedAccount struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// AccountInput carries fields for creating or editing an account.
type AccountInput struct {
	Email    string
	Password string // ignored on edit when empty
	Name     string
	Phone    string
	Role     string
}

type UserManagementService interface {
	ListAccounts() ([]ManagedAccount, error)
	AddAccount(input AccountInput) (*ManagedAccount, error)
	// EditAccount updates an account; changing Role moves the row between
	// the customer and admin tables, keeping the password hash.
	EditAccount(id uint, currentRole string, input AccountInput) (*ManagedAccount, error)
	// DeleteAccount refuses while related records reference the account.
	DeleteAccount(id uint, role string) error
}

type userManagementService struct {
	userRepo  repository.UserRepository
	adminRepo repository.AdminRepository
	db        *gorm.DB
}

func NewUserManagementService(
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	db *gorm.DB,
) UserManagementService {
	return &userManagementService{
		userRepo:  userRepo,
		adminRepo: adminRepo,
		db:        db,
	}
}

func (s *userManagementService) ListAccounts() ([]ManagedAccount, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	admins, err := s.adminRepo.FindAll()
	if err != nil {
		return nil, err
	}

	accounts := make([]ManagedAccount, 0, len(users)+len(admins))
	for _, admin := range admins {
		accounts = append(accounts, ManagedAccount{
			ID:    admin.ID,
			Email: admin.Email,
			Name:  admin.Name,
			Phone: admin.Phone,
			Role:  model.RoleAdmin,
		})
	}
	for _, user := range users {
		accounts = append(accounts, ManagedAccount{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Phone: user.Phone,
			Role:  model.RoleCustomer,
		})
	}
	return accounts, nil
}

func (s *userManagementService) emailTaken(email string) (bool, error) {
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

func (s *userManagementService) AddAccount(input AccountInput) (*ManagedAccount, error) {
	logger.Info("Adding account", map[string]interface{}{
		"email": input.Email,
		"role":  input.Role,
	})

	if input.Role != model.RoleCustomer && input.Role != model.RoleAdmin {
		return nil, ErrInvalidRole
	}

	taken, err := s.emailTaken(input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		logger.Warn("Account creation rejected: email taken", map[string]interface{}{
			"email": input.Email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	if input.Role == model.RoleAdmin {
		admin := &model.Admin{
			Email:        input.Email,
			PasswordHash: hashed,
			Name:         input.Name,
			Phone:        input.Phone,
		}
		if err := s.adminRepo.Create(admin); err != nil {
			return nil, err
		}
		return &ManagedAccount{
			ID: admin.ID, Email: admin.Email, Name: admin.Name,
			Phone: admin.Phone, Role: model.RoleAdmin,
		}, nil
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: hashed,
		Name:         input.Name,
		Phone:        input.Phone,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return &ManagedAccount{
		ID: user.ID, Email: user.Email, Name: user.Name,
		Phone: user.Phone, Role: model.RoleCustomer,
	}, nil
}

func (s *userManagementService) EditAccount(id uint, currentRole string, input AccountInput) (*ManagedAccount, error) {
	logger.Info("Editing account", map[string]interface{}{
		"account_id": id,
		"role":       currentRole,
		"new_role":   input.Role,
	})

	if input.Role != "" && input.Role != model.RoleCustomer && input.Role != model.RoleAdmin {
		return nil, ErrInvalidRole
	}

	switch currentRole {
	case model.RoleAdmin:
		admin, err := s.adminRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return s.applyEdit(adminAsAccount(admin), admin.PasswordHash, input)
	case model.RoleCustomer, "":
		user, err := s.userRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		account := &ManagedAccount{
			ID: user.ID, Email: user.Email, Name: user.Name,
			Phone: user.Phone, Role: model.RoleCustomer,
		}
		return s.applyEdit(account, user.PasswordHash, input)
	default:
		return nil, ErrInvalidRole
	}
}

func adminAsAccount(admin *model.Admin) *ManagedAccount {
	return &ManagedAccount{
		ID: admin.ID, Email: admin.Email, Name: admin.Name,
		Phone: admin.Phone, Role: model.RoleAdmin,
	}
}

func (s *userManagementService) applyEdit(account *ManagedAccount, passwordHash string, input AccountInput) (*ManagedAccount, error) {
	email := account.Email
	if input.Email != "" && input.Email != account.Email {
		taken, err := s.emailTaken(input.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailAlreadyExists
		}
		email = input.Email
	}

	name := account.Name
	if input.Name != "" {
		name = input.Name
	}
	phone := account.Phone
	if input.Phone != "" {
		phone = input.Phone
	}

	hash := passwordHash
	if input.Password != "" {
		hashed, err := util.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		hash = hashed
	}

	targetRole := account.Role
	if input.Role != "" {
		targetRole = input.Role
	}

	// Role unchanged: update in place.
	if targetRole == account.Role {
		if account.Role == model.RoleAdmin {
			admin, err := s.adminRepo.FindByID(account.ID)
			if err != nil {
				return nil, err
			}
			admin.Email = email
			admin.Name = name
			admin.Phone = phone
			admin.PasswordHash = hash
			if err := s.adminRepo.Update(admin); err != nil {
				return nil, err
			}
			return adminAsAccount(admin), nil
		}

		user, err := s.userRepo.FindByID(account.ID)
		if err != nil {
			return nil, err
		}
		user.Email = email
		user.Name = name
		user.Phone = phone
		user.PasswordHash = hash
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		return &ManagedAccount{
			ID: user.ID, Email: user.Email, Name: user.Name,
			Phone: user.Phone, Role: model.RoleCustomer,
		}, nil
	}

	// Role changed: move the row between tables in one transaction,
	// carrying the password hash over.
	var result *ManagedAccount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if targetRole == model.RoleAdmin {
			if err := tx.Delete(&model.User{}, account.ID).Error; err != nil {
				return err
			}
			admin := &model.Admin{
				Email:        email,
				PasswordHash: hash,
				Name:         name,
				Phone:        phone,
			}
			if err := tx.Create(admin).Error; err != nil {
				return err
			}
			result = adminAsAccount(admin)
			return nil
		}

		if err := tx.Delete(&model.Admin{}, account.ID).Error; err != nil {
			return err
		}
		user := &model.User{
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			Phone:        phone,
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		result = &ManagedAccount{
			ID: user.ID, Email: user.Email, Name: user.Name,
			Phone: user.Phone, Role: model.RoleCustomer,
		}
		return nil
	})
	if err != nil {
		logger.Error("Role migration failed", err, map[string]interface{}{
			"account_id": account.ID,
			"from":       account.Role,
			"to":         targetRole,
		})
		return nil, err
	}

	logger.Info("Account role migrated", map[string]interface{}{
		"old_id": account.ID,
		"new_id": result.ID,
		"from":   account.Role,
		"to":     targetRole,
	})
	return result, nil
}

func (s *userManagementService) DeleteAccount(id uint, role string) error {
	logger.Info("Deleting account", map[string]interface{}{
		"account_id": id,
		"role":       role,
	})

	switch role {
	case model.RoleAdmin:
		if _, err := s.adminRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		counts, err := s.adminRepo.CountReferences(id)
		if err != nil {
			return err
		}
		if counts.Any() {
			logger.Warn("Admin delete blocked: related records exist", map[string]interface{}{
				"admin_id":  id,
				"favorites": counts.Favorites,
				"messages":  counts.Messages,
				"events":    counts.Events,
			})
			return ErrAccountInUse
		}
		return s.adminRepo.Delete(id)
	case model.RoleCustomer, "":
		if _, err := s.userRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		counts, err := s.userRepo.CountReferences(id)
		if err != nil {
			return err
		}
		if counts.Any() {
			logger.Warn("User delete blocked: related records exist", map[string]interface{}{
				"user_id":   id,
				"orders":    counts.Orders,
				"reviews":   counts.Reviews,
				"messages":  counts.Messages,
				"addresses": counts.Addresses,
				"cart":      counts.CartItems,
			})
			return ErrAccountInUse
		}
		return s.userRepo.Delete(id)
	default:
		return ErrInvalidRole
	}
}
