package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/savoria/storefront/internal/cache"
	"github.com/savoria/storefront/internal/domain"
	"github.com/savoria/storefront/internal/repository"
)

// CartService owns the cart ledger: it loads the cart, applies the
// domain mutation, and writes the whole cart back. The cache is
// invalidated on every write and repopulated lazily on read.
type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Collapse concurrent cache misses for the same user into one load.
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log and fall through to the repo
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return &domain.Cart{
				UserID:    userID,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem adds item to the user's cart (or increments an existing line)
// and returns the updated cart.
func (s *CartService) AddItem(ctx context.Context, userID string, item domain.CartItem, qty int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		return cart.AddItem(item, qty)
	})
}

func (s *CartService) SetQuantity(ctx context.Context, userID string, productID int64, qty int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		cart.SetQuantity(productID, qty)
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID int64) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		cart.RemoveItem(productID)
		return nil
	})
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) mutate(ctx context.Context, userID string, apply func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = &domain.Cart{UserID: userID, CreatedAt: time.Now()}
	} else if err != nil {
		log.Printf("repo get cart error: %v", err)
		return nil, err
	}

	if err := apply(cart); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, fmt.Errorf("upsert cart: %w", err)
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
