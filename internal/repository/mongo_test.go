package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"olivander/internal/domain"
)

func setupTestDB(t *testing.T) (*mongo.Database, func()) {
	if testing.Short() {
		t.Skip("mongodb container tests are skipped in -short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := Connect(ctx, uri, "testdb")
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Client().Disconnect(ctx)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return db, cleanup
}

func TestMongoProducts_CRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewMongoProducts(db, 5*time.Second)

	p := domain.Product{Name: "Wand", Description: strPtr("hand made"), Price: 49.99, Stock: 12, Categories: []string{"wands", "accessories"}}
	require.NoError(t, repo.Create(ctx, &p))
	require.False(t, p.ID.IsZero())

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, *got)

	p.Name = "Wand mk2"
	p.Description = nil
	p.Categories = []string{}
	require.NoError(t, repo.Replace(ctx, &p))

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wand mk2", got.Name)
	assert.Nil(t, got.Description)
	assert.Empty(t, got.Categories)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrNotFound)

	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoProducts_ReplaceMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewMongoProducts(db, 0)
	p := domain.Product{ID: primitive.NewObjectID(), Name: "Ghost", Price: 1, Categories: []string{}}
	assert.ErrorIs(t, repo.Replace(context.Background(), &p), ErrNotFound)

	n, err := db.Collection(productsCollection).CountDocuments(context.Background(), bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMongoProducts_TextSearch(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewMongoProducts(db, 0)
	require.NoError(t, repo.EnsureTextIndex(ctx))
	// idempotent
	require.NoError(t, repo.EnsureTextIndex(ctx))

	for _, name := range []string{"Elder wand", "Phoenix feather", "Courage tea"} {
		p := domain.Product{Name: name, Price: 1, Categories: []string{}}
		require.NoError(t, repo.Create(ctx, &p))
	}

	list, err := repo.List(ctx, ProductFilter{Search: "feather"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Phoenix feather", list[0].Name)

	list, err = repo.List(ctx, ProductFilter{Search: "basilisk"})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	list, err = repo.List(ctx, ProductFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMongoOrders_CreateGetCount(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewMongoOrders(db, 0)

	o := domain.Order{
		CustomerName:  "Harry",
		CustomerEmail: "harry@hogwarts.uk",
		Items:         []domain.OrderItem{{ProductID: primitive.NewObjectID().Hex(), Quantity: 2, Price: 49.99}},
		Total:         99.98,
	}
	require.NoError(t, repo.Create(ctx, &o))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Items, got.Items)
	assert.Equal(t, 99.98, got.Total)
	assert.True(t, o.CreatedAt.Equal(got.CreatedAt))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestContextCancellation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewMongoProducts(db, 0)
	require.NoError(t, repo.Ping(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(10 * time.Millisecond)

	_, err := repo.GetByID(ctx, primitive.NewObjectID())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
