package services_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_ViewEmptyCart(t *testing.T) {
	s := newStore(t, services.CheckoutConfig{Timeout: time.Second})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		view, err := s.carts.ViewCart(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, view.Lines)
		assert.Empty(t, view.Lines)
		assert.True(t, view.TotalAmount.IsZero())
	}
}

func TestCartService_AddToCartMergesLines(t *testing.T) {
	s := newStore(t, services.CheckoutConfig{Timeout: time.Second})
	ctx := context.Background()
	s.addItem(t, "pen", "1.50")
	s.addItem(t, "book", "10")

	line, err := s.carts.AddToCart(ctx, "alice", "pen", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "Item pen", line.Item.Name)

	line, err = s.carts.AddToCart(ctx, "alice", "pen", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	s.addToCart(t, "alice", "book", 1)
	s.addToCart(t, "bob", "book", 4)

	view, err := s.carts.ViewCart(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "pen", view.Lines[0].Item.ItemID)
	assert.Equal(t, 5, view.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("17.5").Equal(view.TotalAmount), "total was %s", view.TotalAmount)
}

func TestCartService_AddToCartErrors(t *testing.T) {
	s := newStore(t, services.CheckoutConfig{Timeout: time.Second})
	ctx := context.Background()
	s.addItem(t, "pen", "1")

	_, err := s.carts.AddToCart(ctx, "alice", "missing", 1)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = s.carts.AddToCart(ctx, "alice", "pen", 0)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = s.carts.AddToCart(ctx, "alice", "pen", 10001)
	assert.ErrorIs(t, err, services.ErrValidation)

	line, err := s.carts.AddToCart(ctx, "alice", "pen", 10000)
	require.NoError(t, err)
	assert.Equal(t, 10000, line.Quantity)

	_, err = s.carts.AddToCart(ctx, "", "pen", 1)
	assert.ErrorIs(t, err, services.ErrValidation)
}
