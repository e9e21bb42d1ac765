package repository

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

// AdminReferenceCounts summarizes rows that still point at an admin.
type AdminReferenceCounts struct {
	Favorites int64
	Messages  int64
	Events    int64
}

func (c AdminReferenceCounts) Any() bool {
	return c.Favorites > 0 || c.Messages > 0 || c.Events > 0
}

type AdminRepository interface {
	Create(admin *model.Admin) error
	FindByID(id uint) (*model.Admin, error)
	FindByEmail(email string) (*model.Admin, error)
	FindAll() ([]model.Admin, error)
	Update(admin *model.Admin) error
	Delete(id uint) error
	CountReferences(id uint) (AdminReferenceCounts, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(admin *model.Admin) error {
	logger.Debug("Creating admin in database", map[string]interface{}{
		"email": admin.Email,
	})

	if err := r.db.Create(admin).Error; err != nil {
		logger.Error("Failed to create admin in database", err, map[string]interface{}{
			"email": admin.Email,
		})
		return err
	}
	return nil
}

func (r *adminRepository) FindByID(id uint) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByEmail(email string) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindAll() ([]model.Admin, error) {
	var admins []model.Admin
	if err := r.db.Order("created_at DESC").Find(&admins).Error; err != nil {
		logger.Error("Failed to list admins in database", err)
		return nil, err
	}
	return admins, nil
}

func (r *adminRepository) Update(admin *model.Admin) error {
	if err := r.db.Save(admin).Error; err != nil {
		logger.Error("Failed to update admin in database", err, map[string]interface{}{
			"admin_id": admin.ID,
		})
		return err
	}
	return nil
}

func (r *adminRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Admin{}, id).Error; err != nil {
		logger.Error("Failed to delete admin from database", err, map[string]interface{}{
			"admin_id": id,
		})
		return err
	}
	return nil
}

func (r *adminRepository) CountReferences(id uint) (AdminReferenceCounts, error) {
	var counts AdminReferenceCounts

	if err := r.db.Model(&model.Favorite{}).Where("admin_id = ?", id).Count(&counts.Favorites).Error; err != nil {
		return counts, err
	}
	if err := r.db.Model(&model.Message{}).Where("admin_id = ?", id).Count(&counts.Messages).Error; err != nil {
		return counts, err
	}
	if err := r.db.Model(&model.Event{}).Where("admin_id = ?", id).Count(&counts.Events).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
