package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savoria/storefront/internal/domain"
)

func newCartFixture() (*CartService, *mockCartRepository, *mockCache) {
	repo := &mockCartRepository{}
	cc := &mockCache{}
	return NewCartService(repo, cc), repo, cc
}

func storedCart(userID string) *domain.Cart {
	return &domain.Cart{
		UserID: userID,
		Items: []domain.CartItem{
			{ProductID: 1, Name: "Bistro Burger", UnitPrice: 250, Quantity: 2},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestGetCart_CacheHit(t *testing.T) {
	svc, repo, cc := newCartFixture()
	cc.cart = storedCart("u1")
	repo.err = assert.AnError // the repo must not be touched on a hit

	cart, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestGetCart_CacheMissFallsBackToRepo(t *testing.T) {
	svc, repo, _ := newCartFixture()
	repo.cart = storedCart("u1")

	cart, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.Len(t, cart.Items, 1)
}

func TestGetCart_MissingCartIsEmptyNotError(t *testing.T) {
	svc, _, _ := newCartFixture()

	cart, err := svc.GetCart(context.Background(), "new-user")
	require.NoError(t, err)
	assert.Equal(t, "new-user", cart.UserID)
	assert.True(t, cart.IsEmpty())
}

func TestAddItem_CreatesCartAndInvalidatesCache(t *testing.T) {
	svc, repo, cc := newCartFixture()

	cart, err := svc.AddItem(context.Background(), "u1",
		domain.CartItem{ProductID: 7, Name: "Halo-Halo", UnitPrice: 120}, 2)
	require.NoError(t, err)

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.NotNil(t, repo.cart)
	assert.Equal(t, 1, cc.deleteCount())
}

func TestAddItem_InvalidQuantityDoesNotWrite(t *testing.T) {
	svc, repo, cc := newCartFixture()

	_, err := svc.AddItem(context.Background(), "u1",
		domain.CartItem{ProductID: 7, Name: "Halo-Halo", UnitPrice: 120}, 0)

	reason, ok := domain.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonInvalidQuantity, reason)
	assert.Nil(t, repo.cart)
	assert.Zero(t, cc.deleteCount())
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	svc, repo, _ := newCartFixture()
	repo.cart = storedCart("u1")

	cart, err := svc.SetQuantity(context.Background(), "u1", 1, 0)
	require.NoError(t, err)

	assert.True(t, cart.IsEmpty())
	assert.True(t, repo.cart.IsEmpty())
}

func TestRemoveItem_AbsentProductStillSucceeds(t *testing.T) {
	svc, repo, _ := newCartFixture()
	repo.cart = storedCart("u1")

	cart, err := svc.RemoveItem(context.Background(), "u1", 999)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestClearCart_DeletesAndInvalidates(t *testing.T) {
	svc, repo, cc := newCartFixture()
	repo.cart = storedCart("u1")
	cc.cart = repo.cart

	require.NoError(t, svc.ClearCart(context.Background(), "u1"))

	assert.Nil(t, repo.cart)
	assert.Nil(t, cc.cart)
}

func TestClearCart_MissingCartIsNoOp(t *testing.T) {
	svc, _, _ := newCartFixture()

	assert.NoError(t, svc.ClearCart(context.Background(), "u1"))
}
