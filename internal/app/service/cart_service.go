package service

import (
	"errors"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be a positive number")
	ErrSizeMismatch     = errors.New("size does not belong to the product")
)

// CartLine is a cart item joined with its product and the price the
// customer will actually pay for it.
type CartLine struct {
	model.CartItem
	UnitPrice int `json:"unit_price"` // size price after product discount
	LineTotal int `json:"line_total"`
}

type CartService interface {
	GetCart(userID uint) ([]CartLine, int, error)
	AddToCart(userID, productID, sizeID uint, quantity int) (*model.CartItem, error)
	UpdateQuantity(userID, cartItemID uint, quantity int) (*model.CartItem, error)
	RemoveFromCart(userID, cartItemID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// linePrice is the discounted size price for a cart line.
func linePrice(product *model.Product, size *model.ProductSize) int {
	price := size.Price
	if product.Discount > 0 {
		price = price * (100 - product.Discount) / 100
	}
	return price
}

func (s *cartService) GetCart(userID uint) ([]CartLine, int, error) {
	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	lines := make([]CartLine, 0, len(cartItems))
	total := 0
	for _, item := range cartItems {
		unit := linePrice(&item.Product, &item.Size)
		line := CartLine{
			CartItem:  item,
			UnitPrice: unit,
			LineTotal: unit * item.Quantity,
		}
		total += line.LineTotal
		lines = append(lines, line)
	}
	return lines, total, nil
}

func (s *cartService) AddToCart(userID, productID, sizeID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"size_id":    sizeID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	size, err := s.productRepo.FindSizeByID(sizeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSize
		}
		return nil, err
	}
	if size.ProductID != productID {
		logger.Warn("Cart add rejected: size belongs to another product", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"size_id":    sizeID,
		})
		return nil, ErrSizeMismatch
	}

	// Same product+size stacks onto the existing line.
	existing, err := s.cartRepo.FindByUserProductSize(userID, productID, sizeID)
	if err == nil {
		existing.Quantity += quantity
		if err := s.cartRepo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cartItem := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		SizeID:    sizeID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Create(cartItem); err != nil {
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"user_id":      userID,
	})
	return cartItem, nil
}

func (s *cartService) UpdateQuantity(userID, cartItemID uint, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	// Foreign rows look like missing rows to the caller.
	if cartItem.UserID != userID {
		logger.Warn("Cart update denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"owner_id":     cartItem.UserID,
		})
		return nil, ErrCartItemNotFound
	}

	cartItem.Quantity = quantity
	if err := s.cartRepo.Update(cartItem); err != nil {
		return nil, err
	}
	return cartItem, nil
}

func (s *cartService) RemoveFromCart(userID, cartItemID uint) error {
	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}

	if cartItem.UserID != userID {
		logger.Warn("Cart remove denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		return ErrCartItemNotFound
	}

	return s.cartRepo.Delete(cartItemID)
}
