package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"olivander/internal/domain"
	"olivander/internal/repository"
)

// FeaturedLimit сколько товаров показывает главная страница
const FeaturedLimit = 12

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidID    = errors.New("invalid id")
)

// ProductService инкапсулирует бизнес-логику вокруг товаров
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ParseID converts the text form of a store identifier.
func ParseID(s string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return oid, nil
}

func validateProduct(p domain.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case p.Price < 0:
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must be non-negative", ErrInvalidInput)
	}
	return nil
}

// Create вставляет товар и перечитывает его из хранилища
func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	p := in.Product()
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.ID)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, oid)
}

// Replace заменяет все поля товара, кроме id
func (s *ProductService) Replace(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	p := in.Product()
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.ID = oid
	if err := s.repo.Replace(ctx, &p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, oid)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, oid)
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	if f.Skip < 0 || f.Limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must be non-negative", ErrInvalidInput)
	}
	return s.repo.List(ctx, f)
}

// Featured первые товары каталога для главной страницы
func (s *ProductService) Featured(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, repository.ProductFilter{Limit: FeaturedLimit})
}

// EnsureSearchIndex вызывается один раз при старте
func (s *ProductService) EnsureSearchIndex(ctx context.Context) error {
	return s.repo.EnsureTextIndex(ctx)
}
