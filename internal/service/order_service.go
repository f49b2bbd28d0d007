package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"olivander/internal/domain"
	"olivander/internal/repository"
)

// ErrUnknownProduct позиция заказа ссылается на несуществующий товар
var ErrUnknownProduct = errors.New("product not found")

// OrderService создаёт заказы с ценами, зафиксированными на момент оформления
type OrderService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository) *OrderService {
	return &OrderService{products: products, orders: orders}
}

// CreateOrder resolves every line in submitted order before writing anything:
// a malformed or unknown product id rejects the whole order. Stock is not
// touched. Two lines for the same product are priced independently.
func (s *OrderService) CreateOrder(ctx context.Context, customerName, customerEmail string, lines []domain.OrderLine) (*domain.Order, error) {
	if customerName == "" || customerEmail == "" {
		return nil, fmt.Errorf("%w: customer name and email are required", ErrInvalidInput)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		oid, err := ParseID(l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product_id %s", ErrInvalidID, l.ProductID)
		}
		p, err := s.products.GetByID(ctx, oid)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, l.ProductID)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity, Price: p.Price})
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(l.Quantity)))
	}

	o := domain.Order{
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Items:         items,
		Total:         total.InexactFloat64(),
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, o.ID)
}

// GetOrder возвращает заказ по id
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, oid)
}

// Count число сохранённых заказов
func (s *OrderService) Count(ctx context.Context) (int64, error) {
	return s.orders.Count(ctx)
}
