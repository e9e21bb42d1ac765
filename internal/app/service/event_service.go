package service

import (
	"errors"
	"time"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"github.com/ptnguyen/coffeecorner-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidEventDate = errors.New("event date must be YYYY-MM-DD")
	ErrInvalidEventTime = errors.New("event time must be HH:MM")
)

// EventInput carries calendar event fields for create/update.
type EventInput struct {
	Title string
	Date  string // 2006-01-02
	Time  string // 15:04, optional
	Color string // palette color, random when empty
}

type EventService interface {
	ListEvents() ([]model.Event, error)
	ListEventsByMonth(yearMonth string) ([]model.Event, error)
	CreateEvent(adminID uint, input EventInput) (*model.Event, error)
	UpdateEvent(id uint, input EventInput) (*model.Event, error)
	DeleteEvent(id uint) error
}

type eventService struct {
	eventRepo repository.EventRepository
}

func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

func validateEventInput(input EventInput) error {
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return ErrInvalidEventDate
	}
	if input.Time != "" {
		if _, err := time.Parse("15:04", input.Time); err != nil {
			return ErrInvalidEventTime
		}
	}
	return nil
}

func (s *eventService) ListEvents() ([]model.Event, error) {
	return s.eventRepo.FindAll()
}

func (s *eventService) ListEventsByMonth(yearMonth string) ([]model.Event, error) {
	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		return nil, ErrInvalidEventDate
	}
	return s.eventRepo.FindByMonth(yearMonth)
}

func (s *eventService) CreateEvent(adminID uint, input EventInput) (*model.Event, error) {
	logger.Info("Creating event", map[string]interface{}{
		"admin_id": adminID,
		"date":     input.Date,
	})

	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	color := input.Color
	if color == "" {
		color = util.RandomEventColor()
	}

	event := &model.Event{
		AdminID: adminID,
		Title:   input.Title,
		Date:    input.Date,
		Time:    input.Time,
		Color:   color,
	}
	if err := s.eventRepo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) UpdateEvent(id uint, input EventInput) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event.Title = input.Title
	event.Date = input.Date
	event.Time = input.Time
	if input.Color != "" {
		event.Color = input.Color
	}
	if err := s.eventRepo.Update(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) DeleteEvent(id uint) error {
	if _, err := s.eventRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return s.eventRepo.Delete(id)
}
