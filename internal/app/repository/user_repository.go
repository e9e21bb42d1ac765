package repository

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserReferenceCounts summarizes rows that still point at a customer.
// A customer with any non-zero count cannot be deleted.
type UserReferenceCounts struct {
	Orders    int64
	Reviews   int64
	Messages  int64
	Addresses int64
	CartItems int64
}

func (c UserReferenceCounts) Any() bool {
	return c.Orders > 0 || c.Reviews > 0 || c.Messages > 0 || c.Addresses > 0 || c.CartItems > 0
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindAll() ([]model.User, error)
	Update(user *model.User) error
	Delete(id uint) error
	CountReferences(id uint) (UserReferenceCounts, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("created_at DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users in database", err)
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}
	return nil
}

func (r *userRepository) CountReferences(id uint) (UserReferenceCounts, error) {
	var counts UserReferenceCounts

	type countQuery struct {
		model interface{}
		dst   *int64
	}
	queries := []countQuery{
		{&model.Order{}, &counts.Orders},
		{&model.Review{}, &counts.Reviews},
		{&model.Message{}, &counts.Messages},
		{&model.Address{}, &counts.Addresses},
		{&model.CartItem{}, &counts.CartItems},
	}
	for _, q := range queries {
		if err := r.db.Model(q.model).Where("user_id = ?", id).Count(q.dst).Error; err != nil {
			logger.Error("Failed to count user references in database", err, map[string]interface{}{
				"user_id": id,
			})
			return counts, err
		}
	}
	return counts, nil
}
