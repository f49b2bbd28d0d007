package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olivander/internal/domain"
	"olivander/internal/repository"
	"olivander/internal/service"
)

func TestRun_WipesAndInserts(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	orders := repository.NewMemoryOrders(store)
	products := service.NewProductService(store)

	_, err := products.Create(ctx, domain.ProductInput{Name: "stale", Price: 1})
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, &domain.Order{CustomerName: "a", CustomerEmail: "b"}))

	ids, err := Run(ctx, products, store, orders)
	require.NoError(t, err)
	assert.Len(t, ids, len(Catalog))

	list, err := products.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, len(Catalog))
	assert.Equal(t, ids[0], list[0].ID.Hex())
	assert.Equal(t, 49.99, list[0].Price)

	n, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// running twice leaves exactly one catalog
	_, err = Run(ctx, products, store, orders)
	require.NoError(t, err)
	list, _ = products.List(ctx, repository.ProductFilter{})
	assert.Len(t, list, len(Catalog))
}
