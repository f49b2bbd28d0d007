package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product товар каталога
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description *string            `bson:"description"`
	Price       float64            `bson:"price"`
	Stock       int64              `bson:"stock"`
	Categories  []string           `bson:"categories"`
}

// ProductInput поля товара, которые задаёт клиент при создании и замене.
// Nil-поля получают значения по умолчанию в Product().
type ProductInput struct {
	Name        string
	Description *string
	Price       float64
	Stock       *int64
	Categories  []string
}

// Значения по умолчанию для необязательных полей товара.
const DefaultStock int64 = 0

func defaultCategories() []string { return []string{} }

// Product builds a product document with the defaults applied.
func (in ProductInput) Product() Product {
	p := Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       DefaultStock,
		Categories:  in.Categories,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if p.Categories == nil {
		p.Categories = defaultCategories()
	}
	return p
}

// OrderLine позиция заказа в том виде, как её прислал клиент
type OrderLine struct {
	ProductID string
	Quantity  int64
}

// OrderItem позиция заказа с ценой, зафиксированной в момент создания
type OrderItem struct {
	ProductID string  `bson:"product_id"`
	Quantity  int64   `bson:"quantity"`
	Price     float64 `bson:"price"`
}

// Order сущность заказа
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CustomerName  string             `bson:"customer_name"`
	CustomerEmail string             `bson:"customer_email"`
	Items         []OrderItem        `bson:"items"`
	Total         float64            `bson:"total"`
	CreatedAt     time.Time          `bson:"created_at"`
}
