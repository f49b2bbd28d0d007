// Package seed fills an empty shop with the sample catalog.
package seed

import (
	"context"
	"fmt"

	"olivander/internal/domain"
	"olivander/internal/logging"
	"olivander/internal/service"
)

// Collection is anything seed can wipe before inserting.
type Collection interface {
	DeleteAll(ctx context.Context) (int64, error)
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

// Catalog образцы товаров лавки
var Catalog = []domain.ProductInput{
	{
		Name:        "Волшебная палочка — Оливандер (модель №1)",
		Description: strPtr("Ручная работа. Идеально подходит для начинающих магов."),
		Price:       49.99,
		Stock:       int64Ptr(12),
		Categories:  []string{"палочки", "аксессуары"},
	},
	{
		Name:        "Перо феникса — запасной стержень",
		Description: strPtr("Высококачественное перо для усиления заклинаний."),
		Price:       19.5,
		Stock:       int64Ptr(50),
		Categories:  []string{"компоненты"},
	},
	{
		Name:        "Одиночный зелье-чай 'Смелость' (100ml)",
		Description: strPtr("Добавляет уверенности перед экзаменами."),
		Price:       9.99,
		Stock:       int64Ptr(100),
		Categories:  []string{"зелья"},
	},
}

// Run wipes the given collections, then inserts Catalog through the product
// service and returns the new ids in catalog order.
func Run(ctx context.Context, products *service.ProductService, wipe ...Collection) ([]string, error) {
	log := logging.FromCtx(ctx)
	for _, c := range wipe {
		n, err := c.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("wipe: %w", err)
		}
		log.Debug("collection wiped", "deleted", n)
	}

	ids := make([]string, 0, len(Catalog))
	for _, in := range Catalog {
		p, err := products.Create(ctx, in)
		if err != nil {
			return ids, fmt.Errorf("insert %q: %w", in.Name, err)
		}
		ids = append(ids, p.ID.Hex())
	}
	log.Info("inserted product ids", "ids", ids)
	return ids, nil
}
