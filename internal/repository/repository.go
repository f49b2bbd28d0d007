package repository

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"olivander/internal/domain"
)

var (
	// ErrNotFound возвращается, когда сущность не найдена
	ErrNotFound = errors.New("not found")
	// ErrUnavailable оборачивает сетевые ошибки и таймауты хранилища
	ErrUnavailable = errors.New("store unavailable")
)

// ProductFilter параметры выборки товаров
type ProductFilter struct {
	// Search текстовый запрос по name и description; пустая строка означает без фильтра
	Search string
	Skip   int64
	// Limit 0 означает без ограничения
	Limit int64
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	Replace(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	EnsureTextIndex(ctx context.Context) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	Count(ctx context.Context) (int64, error)
}

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// searchTerms splits a text query the way the store's text index does:
// whitespace separated, case-insensitive.
func searchTerms(q string) []string {
	return strings.Fields(strings.ToLower(q))
}

// helper: matches when any term occurs in one of the fields
func matchesAny(terms []string, fields ...string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, f := range fields {
		lf := strings.ToLower(f)
		for _, t := range terms {
			if strings.Contains(lf, t) {
				return true
			}
		}
	}
	return false
}
