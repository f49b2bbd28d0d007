package service

import (
	"context"
	"errors"
	"testing"

	"olivander/internal/domain"
	"olivander/internal/repository"
)

func setupPS(t *testing.T) *ProductService {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewProductService(store)
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func TestProduct_Create_Defaults(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, err := ps.Create(ctx, domain.ProductInput{Name: "Wand", Price: 49.99})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID.IsZero() {
		t.Fatalf("expected id assigned")
	}
	if p.Stock != 0 || p.Categories == nil || len(p.Categories) != 0 || p.Description != nil {
		t.Fatalf("defaults not applied: %+v", p)
	}
}

func TestProduct_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	if _, err := ps.Create(ctx, domain.ProductInput{Name: "", Price: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ps.Create(ctx, domain.ProductInput{Name: "N", Price: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ps.Create(ctx, domain.ProductInput{Name: "N", Price: 1, Stock: int64Ptr(-1)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProduct_CreateThenGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	in := domain.ProductInput{Name: "Phoenix feather", Description: strPtr("spare core"), Price: 19.5, Stock: int64Ptr(50), Categories: []string{"components"}}
	created, err := ps.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ps.GetByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != in.Name || *got.Description != *in.Description || got.Price != in.Price || got.Stock != 50 || len(got.Categories) != 1 || got.Categories[0] != "components" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestProduct_Replace_Get_Delete(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, _ := ps.Create(ctx, domain.ProductInput{Name: "A", Price: 10, Stock: int64Ptr(5), Categories: []string{"x"}})
	id := p.ID.Hex()

	// replace drops fields the payload leaves out
	up, err := ps.Replace(ctx, id, domain.ProductInput{Name: "A+", Price: 12})
	if err != nil {
		t.Fatalf("replace err: %v", err)
	}
	if up.Name != "A+" || up.Price != 12 || up.Stock != 0 || len(up.Categories) != 0 || up.ID != p.ID {
		t.Fatalf("not replaced: %+v", up)
	}

	if err := ps.Delete(ctx, id); err != nil {
		t.Fatalf("delete err: %v", err)
	}
	if err := ps.Delete(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete expected not found, got %v", err)
	}
	if _, err := ps.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found after delete")
	}
}

func TestProduct_InvalidAndMissingIDs(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	if _, err := ps.GetByID(ctx, "abc"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	if _, err := ps.Replace(ctx, "abc", domain.ProductInput{Name: "N", Price: 1}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	if err := ps.Delete(ctx, "abc"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	missing := "65f1a2b3c4d5e6f708192a3b"
	if _, err := ps.Replace(ctx, missing, domain.ProductInput{Name: "N", Price: 1}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	list, _ := ps.List(ctx, repository.ProductFilter{})
	if len(list) != 0 {
		t.Fatalf("replace on missing id changed the store")
	}
}

func TestProduct_List_Search(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	must := func(p *domain.Product, err error) *domain.Product {
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
	_ = must(ps.Create(ctx, domain.ProductInput{Name: "Elder wand", Price: 100}))
	_ = must(ps.Create(ctx, domain.ProductInput{Name: "Phoenix feather", Price: 50}))
	_ = must(ps.Create(ctx, domain.ProductInput{Name: "Courage tea", Description: strPtr("before exams"), Price: 9.99}))

	list, err := ps.List(ctx, repository.ProductFilter{Search: "wand"})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Elder wand" {
		t.Fatalf("expected the wand, got %+v", list)
	}

	list, err = ps.List(ctx, repository.ProductFilter{Search: "exams"})
	if err != nil || len(list) != 1 {
		t.Fatalf("description search failed: %v %+v", err, list)
	}

	list, err = ps.List(ctx, repository.ProductFilter{Search: "dragon"})
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty result, got %v %+v", err, list)
	}

	if _, err := ps.List(ctx, repository.ProductFilter{Limit: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative limit")
	}
}

func TestProduct_Featured(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	for i := 0; i < FeaturedLimit+3; i++ {
		if _, err := ps.Create(ctx, domain.ProductInput{Name: "P", Price: 1}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := ps.Featured(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != FeaturedLimit {
		t.Fatalf("expected %d featured, got %d", FeaturedLimit, len(list))
	}
}
