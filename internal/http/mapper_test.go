package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"olivander/internal/domain"
)

func TestMapper_Nil(t *testing.T) {
	assert.Nil(t, toProductResponse(nil))
	assert.Nil(t, toOrderResponse(nil))
}

func TestMapper_StringifiesID(t *testing.T) {
	oid := primitive.NewObjectID()
	p := toProductResponse(&domain.Product{ID: oid, Name: "Wand", Price: 1})
	assert.Equal(t, oid.Hex(), p.ID)
	assert.NotNil(t, p.Categories)

	o := toOrderResponse(&domain.Order{ID: oid, Items: []domain.OrderItem{{ProductID: "a", Quantity: 2, Price: 3}}, Total: 6})
	assert.Equal(t, oid.Hex(), o.ID)
	assert.Equal(t, []orderItemResponse{{ProductID: "a", Quantity: 2, Price: 3}}, o.Items)
}
