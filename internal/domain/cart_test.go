package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_UpsertMergesByProduct(t *testing.T) {
	var c Cart
	c.Upsert(CartLine{ID: "l1", ProductID: "5", Quantity: 1})
	c.Upsert(CartLine{ID: "l2", ProductID: "5", Quantity: 1})

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 2, c.Count())
}

func TestCart_UpsertAppendsNewProduct(t *testing.T) {
	var c Cart
	c.Upsert(CartLine{ID: "l1", ProductID: "5", Quantity: 2})
	c.Upsert(CartLine{ID: "l2", ProductID: "7", Quantity: 1})

	assert.Len(t, c.Lines, 2)
	assert.Equal(t, 3, c.Count())
}

func TestCart_UpsertClampsQuantity(t *testing.T) {
	var c Cart
	c.Upsert(CartLine{ID: "l1", ProductID: "5", Quantity: 0})
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestCart_SetQuantityZeroRemovesLine(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{ID: "l1", ProductID: "5", Quantity: 2},
		{ID: "l2", ProductID: "7", Quantity: 1},
	}}

	c.SetQuantity("l1", 0)

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, "l2", c.Lines[0].ID)
	assert.Equal(t, 1, c.Count())
}

func TestCart_SetQuantity(t *testing.T) {
	c := Cart{Lines: []CartLine{{ID: "l1", ProductID: "5", Quantity: 2}}}
	c.SetQuantity("l1", 5)
	assert.Equal(t, 5, c.Lines[0].Quantity)
}

func TestCart_SetQuantityAbsentLine(t *testing.T) {
	c := Cart{Lines: []CartLine{{ID: "l1", ProductID: "5", Quantity: 2}}}
	c.SetQuantity("does-not-exist", 3)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestCart_RemoveAbsentIsNoOp(t *testing.T) {
	c := Cart{Lines: []CartLine{{ID: "l1", ProductID: "5", Quantity: 2}}}
	c.Remove("nope")
	assert.Len(t, c.Lines, 1)
}

func TestCart_CountDerivation(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{ID: "a", ProductID: "1", Quantity: 2},
		{ID: "b", ProductID: "2", Quantity: 1},
		{ID: "c", ProductID: "3", Quantity: 3},
	}}
	assert.Equal(t, 6, c.Count())

	c.SetQuantity("b", 4)
	assert.Equal(t, 9, c.Count())
}

func TestCart_Total(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{ID: "a", ProductID: "1", Price: 10, Quantity: 2},
		{ID: "b", ProductID: "2", Price: 5.5, Quantity: 1},
	}}
	assert.InDelta(t, 25.5, c.Total(), 0.001)
}

func TestCart_Clear(t *testing.T) {
	c := Cart{Lines: []CartLine{{ID: "a", ProductID: "1", Quantity: 2}}}
	c.Clear()
	assert.Empty(t, c.Lines)
	assert.Zero(t, c.Count())
}

func TestUser_IsRecognizable(t *testing.T) {
	assert.True(t, User{ID: "1"}.IsRecognizable())
	assert.True(t, User{Name: "Ada"}.IsRecognizable())
	assert.True(t, User{Email: "a@b.c"}.IsRecognizable())
	assert.False(t, User{}.IsRecognizable())
}
