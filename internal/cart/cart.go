// Package cart holds a shopper's cart as plain owned state.
//
// Lines keep insertion order and are keyed by product id. Prices are copied
// into the line when the product is first added, so later catalog changes do
// not move the cart total. A line never has a quantity below one: updates to
// zero or less remove it.
package cart

import (
	"math"
	"sync"

	"github.com/geocoder89/storefront/internal/apperr"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/pubsub"
	"github.com/shopspring/decimal"
)

// ProductRef is the slice of a catalog product the cart needs at add time.
type ProductRef struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
}

func RefFromProduct(p product.Product) ProductRef {
	return ProductRef{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
	}
}

type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price × quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is handed to subscribers after every change.
type Snapshot struct {
	Lines []Line
	Count int
	Total decimal.Decimal
}

type Cart struct {
	mu    sync.Mutex
	lines []Line

	subs pubsub.List[Snapshot]

	checkout CheckoutConfig
}

func New(opts ...Option) *Cart {
	c := &Cart{
		checkout: defaultCheckoutConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddItem appends a line for p, or grows the existing line's quantity.
func (c *Cart) AddItem(p ProductRef, quantity int) error {
	if p.ID == "" {
		return apperr.Validation("product id is required")
	}
	if quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	if p.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}

	c.mu.Lock()
	// the cart count is the sum of all lines, so it bounds every line too
	if quantity > math.MaxInt-c.countLocked() {
		c.mu.Unlock()
		return apperr.Validation("quantity is too large")
	}
	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity += quantity
	} else {
		c.lines = append(c.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Category:  p.Category,
			Quantity:  quantity,
		})
	}
	c.unlockAndPublish()
	return nil
}

// UpdateQuantity sets a line's quantity; n <= 0 removes the line. Unknown ids
// and quantities that would push the cart count past math.MaxInt are ignored.
func (c *Cart) UpdateQuantity(productID string, n int) {
	if n <= 0 {
		c.RemoveItem(productID)
		return
	}

	c.mu.Lock()
	i := c.indexOf(productID)
	if i < 0 || c.lines[i].Quantity == n || n > math.MaxInt-(c.countLocked()-c.lines[i].Quantity) {
		c.mu.Unlock()
		return
	}
	c.lines[i].Quantity = n
	c.unlockAndPublish()
}

func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	i := c.indexOf(productID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.unlockAndPublish()
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.unlockAndPublish()
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLines()
}

func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countLocked()
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for change notifications, called in subscription
// order. The returned func removes it.
func (c *Cart) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return c.subs.Subscribe(fn)
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) countLocked() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) copyLines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) snapshotLocked() Snapshot {
	return Snapshot{
		Lines: c.copyLines(),
		Count: c.countLocked(),
		Total: c.totalLocked(),
	}
}

// unlockAndPublish must be called with c.mu held. It releases the lock before
// calling subscribers so they may read the cart.
func (c *Cart) unlockAndPublish() {
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.subs.Publish(snap)
}
