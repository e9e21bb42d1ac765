package service

import (
	"errors"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressInput carries address fields for create/update.
type AddressInput struct {
	Label     string
	Recipient string
	Phone     string
	Street    string
	City      string
	IsDefault bool
}

type AddressService interface {
	ListAddresses(userID uint) ([]model.Address, error)
	CreateAddress(userID uint, input AddressInput) (*model.Address, error)
	UpdateAddress(userID, addressID uint, input AddressInput) (*model.Address, error)
	DeleteAddress(userID, addressID uint) error
	SetDefaultAddress(userID, addressID uint) (*model.Address, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

// findOwned fetches an address and hides rows of other users.
func (s *addressService) findOwned(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		logger.Warn("Address access denied: ownership mismatch", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
			"owner_id":   address.UserID,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) ListAddresses(userID uint) ([]model.Address, error) {
	return s.addressRepo.FindByUserID(userID)
}

func (s *addressService) CreateAddress(userID uint, input AddressInput) (*model.Address, error) {
	logger.Info("Creating address", map[string]interface{}{
		"user_id": userID,
	})

	address := &model.Address{
		UserID:    userID,
		Label:     input.Label,
		Recipient: input.Recipient,
		Phone:     input.Phone,
		Street:    input.Street,
		City:      input.City,
	}
	if err := s.addressRepo.Create(address); err != nil {
		return nil, err
	}

	if input.IsDefault {
		if err := s.addressRepo.SetDefault(userID, address.ID); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}
	return address, nil
}

func (s *addressService) UpdateAddress(userID, addressID uint, input AddressInput) (*model.Address, error) {
	address, err := s.findOwned(userID, addressID)
	if err != nil {
		return nil, err
	}

	address.Label = input.Label
	address.Recipient = input.Recipient
	address.Phone = input.Phone
	address.Street = input.Street
	address.City = input.City
	if err := s.addressRepo.Update(address); err != nil {
		return nil, err
	}

	if input.IsDefault && !address.IsDefault {
		if err := s.addressRepo.SetDefault(userID, address.ID); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}
	return address, nil
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	if _, err := s.findOwned(userID, addressID); err != nil {
		return err
	}
	return s.addressRepo.Delete(addressID)
}

func (s *addressService) SetDefaultAddress(userID, addressID uint) (*model.Address, error) {
	if _, err := s.findOwned(userID, addressID); err != nil {
		return nil, err
	}

	if err := s.addressRepo.SetDefault(userID, addressID); err != nil {
		return nil, err
	}

	logger.Info("Default address updated", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return s.addressRepo.FindByID(addressID)
}
