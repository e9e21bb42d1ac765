package service

import (
	"errors"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrFavoriteExists   = errors.New("product is already a favorite")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// FavoriteEntry is a favorite decorated with the size-M price and the
// product's delivered-order rating.
type FavoriteEntry struct {
	model.Favorite
	PriceM        int     `json:"price_m"`
	AverageRating float64 `json:"average_rating"`
}

type FavoriteService interface {
	ListFavorites(adminID uint) ([]FavoriteEntry, error)
	AddFavorite(adminID, productID uint) (*model.Favorite, error)
	RemoveFavorite(adminID, productID uint) error
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

func (s *favoriteService) ListFavorites(adminID uint) ([]FavoriteEntry, error) {
	favorites, err := s.favoriteRepo.FindByAdminID(adminID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.productRepo.AverageRatings()
	if err != nil {
		return nil, err
	}

	entries := make([]FavoriteEntry, 0, len(favorites))
	for _, favorite := range favorites {
		entry := FavoriteEntry{
			Favorite:      favorite,
			AverageRating: ratings[favorite.ProductID].Average,
		}
		for _, size := range favorite.Product.Sizes {
			if size.Size == "M" {
				entry.PriceM = size.Price
				break
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *favoriteService) AddFavorite(adminID, productID uint) (*model.Favorite, error) {
	logger.Info("Adding favorite", map[string]interface{}{
		"admin_id":   adminID,
		"product_id": productID,
	})

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if _, err := s.favoriteRepo.FindByAdminAndProduct(adminID, productID); err == nil {
		return nil, ErrFavoriteExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	favorite := &model.Favorite{
		AdminID:   adminID,
		ProductID: productID,
	}
	if err := s.favoriteRepo.Create(favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

func (s *favoriteService) RemoveFavorite(adminID, productID uint) error {
	favorite, err := s.favoriteRepo.FindByAdminAndProduct(adminID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return s.favoriteRepo.Delete(favorite.ID)
}
