package domain

import (
	"fmt"
	"time"
)

type CartItem struct {
	ProductID  int64     `bson:"product_id" json:"product_id"`
	Name       string    `bson:"name" json:"name"`
	UnitPrice  float64   `bson:"unit_price" json:"unit_price"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	Category   string    `bson:"category" json:"category"`
	Spicy      bool      `bson:"spicy" json:"spicy"`
	Vegetarian bool      `bson:"vegetarian" json:"vegetarian"`
	AddedAt    time.Time `bson:"added_at" json:"added_at"`
}

// Cart is the live line-item set prior to order creation. Items keep
// insertion order for display; lookups go by product id. A line never
// holds quantity below 1 — reducing it to zero removes the line.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// AddItem inserts item with the given quantity, or increments the
// existing line when the product is already in the cart.
func (c *Cart) AddItem(item CartItem, qty int) error {
	if qty < 1 {
		return &Rejection{
			Reason: ReasonInvalidQuantity,
			Detail: fmt.Sprintf("quantity must be at least 1, got %d", qty),
		}
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += qty
			return nil
		}
	}
	item.Quantity = qty
	c.Items = append(c.Items, item)
	return nil
}

// SetQuantity sets the line to exactly qty. A quantity below 1 removes
// the line, mirroring "decrementing to zero removes it"; that is not an
// error.
func (c *Cart) SetQuantity(productID int64, qty int) {
	if qty < 1 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			return
		}
	}
}

// RemoveItem deletes the line for productID. Removing an absent product
// is a no-op.
func (c *Cart) RemoveItem(productID int64) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}

// Total is the subtotal plus the externally supplied delivery fee. The
// fee is an opaque input here; zero means pickup or fee unknown yet.
func (c *Cart) Total(deliveryFee float64) float64 {
	return c.Subtotal() + deliveryFee
}
