package repository

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(event *model.Event) error
	FindByID(id uint) (*model.Event, error)
	FindAll() ([]model.Event, error)
	FindByMonth(yearMonth string) ([]model.Event, error)
	Update(event *model.Event) error
	Delete(id uint) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(event *model.Event) error {
	logger.Debug("Creating event in database", map[string]interface{}{
		"admin_id": event.AdminID,
		"date":     event.Date,
	})

	if err := r.db.Create(event).Error; err != nil {
		logger.Error("Failed to create event in database", err, map[string]interface{}{
			"admin_id": event.AdminID,
		})
		return err
	}
	return nil
}

func (r *eventRepository) FindByID(id uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAll() ([]model.Event, error) {
	var events []model.Event
	if err := r.db.Order("date ASC, time ASC").Find(&events).Error; err != nil {
		logger.Error("Failed to list events in database", err)
		return nil, err
	}
	return events, nil
}

// FindByMonth lists events whose date falls in the given month ("2006-01").
func (r *eventRepository) FindByMonth(yearMonth string) ([]model.Event, error) {
	var events []model.Event
	err := r.db.Where("date LIKE ?", yearMonth+"%").
		Order("date ASC, time ASC").
		Find(&events).Error
	if err != nil {
		logger.Error("Failed to find events by month in database", err, map[string]interface{}{
			"month": yearMonth,
		})
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Update(event *model.Event) error {
	if err := r.db.Save(event).Error; err != nil {
		logger.Error("Failed to update event in database", err, map[string]interface{}{
			"event_id": event.ID,
		})
		return err
	}
	return nil
}

func (r *eventRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Event{}, id).Error; err != nil {
		logger.Error("Failed to delete event from database", err, map[string]interface{}{
			"event_id": id,
		})
		return err
	}
	return nil
}
