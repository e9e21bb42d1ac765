package service

import (
	"errors"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStockItemNotFound = errors.New("stock item not found")
	ErrStoreNotFound     = errors.New("store not found")
)

// StockItemInput carries stock item fields for create/update.
type StockItemInput struct {
	StoreID  uint
	Name     string
	Quantity int
	Unit     string
}

type StockService interface {
	ListStockItems() ([]model.StockItem, error)
	CreateStockItem(input StockItemInput) (*model.StockItem, error)
	UpdateStockItem(id uint, input StockItemInput) (*model.StockItem, error)
	DeleteStockItem(id uint) error
}

type stockService struct {
	stockRepo repository.StockRepository
	storeRepo repository.StoreRepository
}

func NewStockService(stockRepo repository.StockRepository, storeRepo repository.StoreRepository) StockService {
	return &stockService{
		stockRepo: stockRepo,
		storeRepo: storeRepo,
	}
}

func (s *stockService) ListStockItems() ([]model.StockItem, error) {
	return s.stockRepo.FindAll()
}

func (s *stockService) checkStore(storeID uint) error {
	exists, err := s.storeRepo.Exists(storeID)
	if err != nil {
		return err
	}
	if !exists {
		logger.Warn("Stock operation rejected: store not found", map[string]interface{}{
			"store_id": storeID,
		})
		return ErrStoreNotFound
	}
	return nil
}

func (s *stockService) CreateStockItem(input StockItemInput) (*model.StockItem, error) {
	logger.Info("Creating stock item", map[string]interface{}{
		"store_id": input.StoreID,
		"name":     input.Name,
	})

	if input.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if err := s.checkStore(input.StoreID); err != nil {
		return nil, err
	}

	item := &model.StockItem{
		StoreID:  input.StoreID,
		Name:     input.Name,
		Quantity: input.Quantity,
		Unit:     input.Unit,
	}
	if err := s.stockRepo.Create(item); err != nil {
		return nil, err
	}
	return s.stockRepo.FindByID(item.ID)
}

func (s *stockService) UpdateStockItem(id uint, input StockItemInput) (*model.StockItem, error) {
	item, err := s.stockRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStockItemNotFound
		}
		return nil, err
	}

	if input.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if input.StoreID != 0 && input.StoreID != item.StoreID {
		if err := s.checkStore(input.StoreID); err != nil {
			return nil, err
		}
		item.StoreID = input.StoreID
	}

	item.Name = input.Name
	item.Quantity = input.Quantity
	item.Unit = input.Unit
	if err := s.stockRepo.Update(item); err != nil {
		return nil, err
	}
	return s.stockRepo.FindByID(id)
}

func (s *stockService) DeleteStockItem(id uint) error {
	if _, err := s.stockRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStockItemNotFound
		}
		return err
	}
	return s.stockRepo.Delete(id)
}
