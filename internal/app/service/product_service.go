package service

import (
	"errors"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid product category")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	ErrInvalidSize     = errors.New("invalid product size")
	ErrProductInUse    = errors.New("product is referenced by existing orders")
)

// ProductInput carries product fields for create/update.
type ProductInput struct {
	Name        string
	Description string
	Category    model.ProductCategory
	Price       int
	Discount    int
	Stock       int
	ImageURL    string
	ThumbURL    string
	Sizes       []model.ProductSize
}

// AdminProduct decorates a product with back-office listing extras.
type AdminProduct struct {
	model.Product
	Favorited     bool    `json:"favorited"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

type ProductService interface {
	ListProducts(category string) ([]model.Product, error)
	GetProduct(id uint) (*model.Product, []model.Review, error)
	BestSellers() ([]repository.BestSeller, error)

	AdminListProducts(adminID uint) ([]AdminProduct, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
}

type productService struct {
	productRepo  repository.ProductRepository
	reviewRepo   repository.ReviewRepository
	favoriteRepo repository.FavoriteRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	favoriteRepo repository.FavoriteRepository,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		reviewRepo:   reviewRepo,
		favoriteRepo: favoriteRepo,
	}
}

func validateProductInput(input ProductInput) error {
	if !model.ValidCategory(input.Category) {
		return ErrInvalidCategory
	}
	if input.Discount < 0 || input.Discount > 100 {
		return ErrInvalidDiscount
	}
	for _, size := range input.Sizes {
		if !model.ValidSize(size.Size) {
			return ErrInvalidSize
		}
	}
	return nil
}

func (s *productService) ListProducts(category string) ([]model.Product, error) {
	if category != "" && !model.ValidCategory(model.ProductCategory(category)) {
		return nil, ErrInvalidCategory
	}

	products, err := s.productRepo.FindAll(category)
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProduct(id uint) (*model.Product, []model.Review, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}

	reviews, err := s.reviewRepo.FindByProductID(id)
	if err != nil {
		logger.Error("Failed to fetch product reviews", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, nil, err
	}

	return product, reviews, nil
}

func (s *productService) BestSellers() ([]repository.BestSeller, error) {
	return s.productRepo.BestSellers(10)
}

func (s *productService) AdminListProducts(adminID uint) ([]AdminProduct, error) {
	products, err := s.productRepo.FindAll("")
	if err != nil {
		return nil, err
	}

	favorites, err := s.favoriteRepo.FindByAdminID(adminID)
	if err != nil {
		return nil, err
	}
	favorited := make(map[uint]bool, len(favorites))
	for _, favorite := range favorites {
		favorited[favorite.ProductID] = true
	}

	ratings, err := s.productRepo.AverageRatings()
	if err != nil {
		return nil, err
	}

	decorated := make([]AdminProduct, 0, len(products))
	for _, product := range products {
		rating := ratings[product.ID]
		decorated = append(decorated, AdminProduct{
			Product:       product,
			Favorited:     favorited[product.ID],
			AverageRating: rating.Average,
			ReviewCount:   rating.Count,
		})
	}
	return decorated, nil
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":     input.Name,
		"category": input.Category,
	})

	if err := validateProductInput(input); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"name":  input.Name,
			"error": err.Error(),
		})
		return nil, err
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Discount:    input.Discount,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		ThumbURL:    input.ThumbURL,
		Sizes:       input.Sizes,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"sizes":      len(product.Sizes),
	})
	return product, nil
}

func (s *productService) UpdateProduct(id uint, input ProductInput) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Category = input.Category
	product.Price = input.Price
	product.Discount = input.Discount
	product.Stock = input.Stock
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}
	if input.ThumbURL != "" {
		product.ThumbURL = input.ThumbURL
	}
	product.Sizes = nil
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	// Removed sizes survive while order lines or carts still point at them.
	err = s.productRepo.ReconcileSizes(id, input.Sizes, func(sizeID uint) (bool, error) {
		if count, err := s.productRepo.CountOrderDetailsBySize(sizeID); err != nil || count > 0 {
			return false, err
		}
		if count, err := s.productRepo.CountCartItemsBySize(sizeID); err != nil || count > 0 {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		logger.Error("Failed to reconcile product sizes", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	return s.productRepo.FindByID(id)
}

func (s *productService) DeleteProduct(id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	count, err := s.productRepo.CountOrderDetailsByProduct(id)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Warn("Product delete blocked: referenced by orders", map[string]interface{}{
			"product_id":  id,
			"order_lines": count,
		})
		return ErrProductInUse
	}

	if err := s.productRepo.DeleteWithSizes(id); err != nil {
		return err
	}

	logger.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
