package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefDecodesBareID(t *testing.T) {
	var item CartItem
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"c1","user":"u1","product":"p1","quantity":2}`), &item))

	assert.Equal(t, "u1", item.User.ID)
	assert.Equal(t, "p1", item.Product.ID)
	assert.Nil(t, item.Product.Obj)
}

func TestRefDecodesPopulatedObject(t *testing.T) {
	var item CartItem
	payload := `{"_id":"c1","user":{"_id":"u1","email":"a@b.c"},"product":{"_id":"p1","title":"Phone","price":"199.5"},"quantity":1}`
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, "u1", item.User.ID)
	require.NotNil(t, item.Product.Obj)
	assert.Equal(t, "p1", item.Product.ID)
	assert.Equal(t, "Phone", item.Product.Obj.Title)
	assert.True(t, decimal.RequireFromString("199.5").Equal(item.LineTotal()))
}

func TestRefNullAndInvalid(t *testing.T) {
	var ref Ref[Brand]
	require.NoError(t, json.Unmarshal([]byte(`null`), &ref))
	assert.True(t, ref.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`42`), &ref))
}

func TestRefEncodesBackToSameShape(t *testing.T) {
	bare, err := json.Marshal(RefTo[Brand]("b1"))
	require.NoError(t, err)
	assert.JSONEq(t, `"b1"`, string(bare))

	full, err := json.Marshal(Populated("b1", Brand{ID: "b1", Name: "Acme"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"b1","name":"Acme"}`, string(full))

	empty, err := json.Marshal(Ref[Brand]{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(empty))
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderStatusOutForDelivery.Valid())
	assert.False(t, OrderStatus("Shipped").Valid())
}

func TestPopulatedRefKeepsIDWhenRecordOmitsIt(t *testing.T) {
	item := CartItem{
		ID:       "c1",
		Product:  Populated("p1", Product{Title: "Phone"}),
		Quantity: 1,
	}

	b, err := json.Marshal(item)
	require.NoError(t, err)

	var back CartItem
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "p1", back.Product.ID)
	require.NotNil(t, back.Product.Obj)
	assert.Equal(t, "p1", back.Product.Obj.ID)
	assert.Equal(t, "Phone", back.Product.Obj.Title)

	mismatched, err := json.Marshal(Populated("b1", Brand{ID: "b2", Name: "Acme"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"b1","name":"Acme"}`, string(mismatched))
}
