package httpapi

import (
	"time"

	"olivander/internal/domain"
)

type productResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"`
	Stock       int64    `json:"stock"`
	Categories  []string `json:"categories"`
}

type orderItemResponse struct {
	ProductID string  `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Items         []orderItemResponse `json:"items"`
	Total         float64             `json:"total"`
	CreatedAt     time.Time           `json:"created_at"`
}

// toProductResponse renders the store id as text; nil stays nil.
func toProductResponse(p *domain.Product) *productResponse {
	if p == nil {
		return nil
	}
	cats := p.Categories
	if cats == nil {
		cats = []string{}
	}
	return &productResponse{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Categories:  cats,
	}
}

func toProductResponses(list []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(list))
	for i := range list {
		out = append(out, *toProductResponse(&list[i]))
	}
	return out
}

func toOrderResponse(o *domain.Order) *orderResponse {
	if o == nil {
		return nil
	}
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse(it))
	}
	return &orderResponse{
		ID:            o.ID.Hex(),
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         items,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
}
