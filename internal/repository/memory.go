package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"olivander/internal/domain"
)

// MemoryStore in-memory хранилище товаров с сохранением порядка вставки.
// Используется в тестах и при запуске serve --memory.
type MemoryStore struct {
	mu           sync.RWMutex
	productOrder []primitive.ObjectID
	productsByID map[primitive.ObjectID]domain.Product
	ordersByID   map[primitive.ObjectID]domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		productsByID: make(map[primitive.ObjectID]domain.Product),
		ordersByID:   make(map[primitive.ObjectID]domain.Order),
	}
}

// Ensure interfaces
var (
	_ ProductRepository = (*MemoryStore)(nil)
	_ Pinger            = (*MemoryStore)(nil)
)

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Create(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	m.productsByID[p.ID] = copyProduct(*p)
	m.productOrder = append(m.productOrder, p.ID)
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyProduct(p)
	return &cp, nil
}

func (m *MemoryStore) Replace(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.productsByID[p.ID]; !ok {
		return ErrNotFound
	}
	m.productsByID[p.ID] = copyProduct(*p)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	for i, oid := range m.productOrder {
		if oid == id {
			m.productOrder = append(m.productOrder[:i], m.productOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, f ProductFilter) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	terms := searchTerms(f.Search)
	out := make([]domain.Product, 0)
	skipped := int64(0)
	for _, id := range m.productOrder {
		p := m.productsByID[id]
		desc := ""
		if p.Description != nil {
			desc = *p.Description
		}
		if !matchesAny(terms, p.Name, desc) {
			continue
		}
		if skipped < f.Skip {
			skipped++
			continue
		}
		if f.Limit > 0 && int64(len(out)) >= f.Limit {
			break
		}
		out = append(out, copyProduct(p))
	}
	return out, nil
}

// DeleteAll удаляет все товары
func (m *MemoryStore) DeleteAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.productsByID))
	m.productsByID = make(map[primitive.ObjectID]domain.Product)
	m.productOrder = nil
	return n, nil
}

// EnsureTextIndex: поиск в памяти работает без индекса
func (m *MemoryStore) EnsureTextIndex(context.Context) error { return nil }

// MemoryOrders репозиторий заказов поверх MemoryStore
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(_ context.Context, o *domain.Order) error {
	mo.store.mu.Lock()
	defer mo.store.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now().UTC()
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	mo.store.ordersByID[o.ID] = cp
	return nil
}

func (mo *MemoryOrders) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (mo *MemoryOrders) DeleteAll(context.Context) (int64, error) {
	mo.store.mu.Lock()
	defer mo.store.mu.Unlock()
	n := int64(len(mo.store.ordersByID))
	mo.store.ordersByID = make(map[primitive.ObjectID]domain.Order)
	return n, nil
}

func (mo *MemoryOrders) Count(context.Context) (int64, error) {
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()
	return int64(len(mo.store.ordersByID)), nil
}

func copyProduct(p domain.Product) domain.Product {
	cp := p
	if p.Categories != nil {
		cp.Categories = append([]string{}, p.Categories...)
	}
	if p.Description != nil {
		d := *p.Description
		cp.Description = &d
	}
	return cp
}
