package service

import (
	"errors"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAssignedElsewhere = errors.New("conversation is assigned to another admin")
	ErrEmptyMessage      = errors.New("message body is empty")
)

// Thread is one row of the back-office inbox list.
type Thread struct {
	UserID      uint          `json:"user_id"`
	UserName    string        `json:"user_name"`
	LastMessage model.Message `json:"last_message"`
	HasUnread   bool          `json:"has_unread"`
	AssignedTo  *uint         `json:"assigned_to,omitempty"`
}

// MessageNotifier pushes new-message events to connected clients. The
// websocket hub implements it; a nil notifier disables pushes.
type MessageNotifier interface {
	NotifyNewMessage(message *model.Message)
}

type InboxService interface {
	// AdminThreads lists conversations visible to the admin: unassigned
	// ones plus those assigned to them.
	AdminThreads(adminID uint) ([]Thread, error)
	// AdminThread returns a conversation's messages and marks the
	// customer's messages read.
	AdminThread(adminID, userID uint) ([]model.Message, error)
	SendFromAdmin(adminID, userID uint, body string) (*model.Message, error)
	// Assign claims a conversation, first come first served.
	Assign(adminID, userID uint) (*model.UserAdminAssignment, error)

	UserThread(userID uint) ([]model.Message, error)
	SendFromUser(userID uint, body string) (*model.Message, error)
}

type inboxService struct {
	messageRepo repository.MessageRepository
	notifier    MessageNotifier
}

func NewInboxService(messageRepo repository.MessageRepository, notifier MessageNotifier) InboxService {
	return &inboxService{
		messageRepo: messageRepo,
		notifier:    notifier,
	}
}

// assignedAdmin returns the conversation's admin, or nil when unassigned.
func (s *inboxService) assignedAdmin(userID uint) (*uint, error) {
	assignment, err := s.messageRepo.FindAssignmentByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	adminID := assignment.AdminID
	return &adminID, nil
}

func (s *inboxService) AdminThreads(adminID uint) ([]Thread, error) {
	latest, err := s.messageRepo.LatestPerUser()
	if err != nil {
		return nil, err
	}

	unread, err := s.messageRepo.UnreadCountsByUser()
	if err != nil {
		return nil, err
	}

	threads := make([]Thread, 0, len(latest))
	for _, message := range latest {
		assigned, err := s.assignedAdmin(message.UserID)
		if err != nil {
			return nil, err
		}
		// Conversations claimed by someone else stay out of this inbox.
		if assigned != nil && *assigned != adminID {
			continue
		}

		threads = append(threads, Thread{
			UserID:      message.UserID,
			UserName:    message.User.Name,
			LastMessage: message,
			HasUnread:   unread[message.UserID] > 0,
			AssignedTo:  assigned,
		})
	}
	return threads, nil
}

func (s *inboxService) AdminThread(adminID, userID uint) ([]model.Message, error) {
	assigned, err := s.assignedAdmin(userID)
	if err != nil {
		return nil, err
	}
	if assigned != nil && *assigned != adminID {
		logger.Warn("Thread access denied: assigned to another admin", map[string]interface{}{
			"admin_id": adminID,
			"user_id":  userID,
			"assigned": *assigned,
		})
		return nil, ErrAssignedElsewhere
	}

	messages, err := s.messageRepo.FindThreadByUserID(userID)
	if err != nil {
		return nil, err
	}

	// Opening the thread counts as reading it.
	if err := s.messageRepo.MarkUserMessagesRead(userID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *inboxService) SendFromAdmin(adminID, userID uint, body string) (*model.Message, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}

	assigned, err := s.assignedAdmin(userID)
	if err != nil {
		return nil, err
	}
	if assigned != nil && *assigned != adminID {
		return nil, ErrAssignedElsewhere
	}

	message := &model.Message{
		UserID:    userID,
		AdminID:   &adminID,
		Direction: model.DirectionAdminToUser,
		Body:      body,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	logger.Info("Admin message sent", map[string]interface{}{
		"admin_id": adminID,
		"user_id":  userID,
	})

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(message)
	}
	return message, nil
}

func (s *inboxService) Assign(adminID, userID uint) (*model.UserAdminAssignment, error) {
	logger.Info("Assigning conversation", map[string]interface{}{
		"admin_id": adminID,
		"user_id":  userID,
	})

	existing, err := s.messageRepo.FindAssignmentByUserID(userID)
	if err == nil {
		if existing.AdminID == adminID {
			// Claiming twice is a no-op.
			return existing, nil
		}
		logger.Warn("Assignment rejected: already claimed", map[string]interface{}{
			"admin_id": adminID,
			"user_id":  userID,
			"holder":   existing.AdminID,
		})
		return nil, ErrAssignedElsewhere
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.messageRepo.Assign(userID, adminID)
}

func (s *inboxService) UserThread(userID uint) ([]model.Message, error) {
	return s.messageRepo.FindThreadByUserID(userID)
}

func (s *inboxService) SendFromUser(userID uint, body string) (*model.Message, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}

	// The assigned admin, if any, is stamped on the message so their inbox
	// correlates it; unassigned messages get backfilled on assignment.
	assigned, err := s.assignedAdmin(userID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		UserID:    userID,
		AdminID:   assigned,
		Direction: model.DirectionUserToAdmin,
		Body:      body,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	logger.Info("User message sent", map[string]interface{}{
		"user_id": userID,
	})

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(message)
	}
	return message, nil
}
