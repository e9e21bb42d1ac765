package repository

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *model.Message) error
	FindThreadByUserID(userID uint) ([]model.Message, error)
	MarkUserMessagesRead(userID uint) error
	LatestPerUser() ([]model.Message, error)
	UnreadCountsByUser() (map[uint]int64, error)

	FindAssignmentByUserID(userID uint) (*model.UserAdminAssignment, error)
	// Assign claims the conversation for an admin and stamps the admin onto
	// messages sent while it was unassigned, in one transaction.
	Assign(userID, adminID uint) (*model.UserAdminAssignment, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(message *model.Message) error {
	logger.Debug("Creating message in database", map[string]interface{}{
		"user_id":   message.UserID,
		"direction": message.Direction,
	})

	if err := r.db.Create(message).Error; err != nil {
		logger.Error("Failed to create message in database", err, map[string]interface{}{
			"user_id":   message.UserID,
			"direction": message.Direction,
		})
		return err
	}
	return nil
}

func (r *messageRepository) FindThreadByUserID(userID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("user_id = ?", userID).
		Preload("User").
		Preload("Admin").
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		logger.Error("Failed to find message thread in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkUserMessagesRead(userID uint) error {
	err := r.db.Model(&model.Message{}).
		Where("user_id = ? AND direction = ? AND is_read = ?",
			userID, model.DirectionUserToAdmin, false).
		Update("is_read", true).Error
	if err != nil {
		logger.Error("Failed to mark messages read in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

// LatestPerUser returns the newest message of every customer conversation.
func (r *messageRepository) LatestPerUser() ([]model.Message, error) {
	subquery := r.db.Model(&model.Message{}).
		Select("MAX(id)").
		Group("user_id")

	var messages []model.Message
	err := r.db.Where("id IN (?)", subquery).
		Preload("User").
		Preload("Admin").
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		logger.Error("Failed to find latest messages per user in database", err)
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) UnreadCountsByUser() (map[uint]int64, error) {
	var rows []struct {
		UserID uint
		Count  int64
	}
	err := r.db.Model(&model.Message{}).
		Select("user_id, COUNT(id) as count").
		Where("direction = ? AND is_read = ?", model.DirectionUserToAdmin, false).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count unread messages in database", err)
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}

func (r *messageRepository) FindAssignmentByUserID(userID uint) (*model.UserAdminAssignment, error) {
	var assignment model.UserAdminAssignment
	err := r.db.Where("user_id = ?", userID).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *messageRepository) Assign(userID, adminID uint) (*model.UserAdminAssignment, error) {
	assignment := &model.UserAdminAssignment{
		UserID:  userID,
		AdminID: adminID,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}
		// Backfill messages that arrived before anyone claimed the thread.
		return tx.Model(&model.Message{}).
			Where("user_id = ? AND admin_id IS NULL", userID).
			Update("admin_id", adminID).Error
	})
	if err != nil {
		logger.Error("Failed to assign conversation in database", err, map[string]interface{}{
			"user_id":  userID,
			"admin_id": adminID,
		})
		return nil, err
	}

	logger.Debug("Conversation assigned in database", map[string]interface{}{
		"user_id":  userID,
		"admin_id": adminID,
	})
	return assignment, nil
}
