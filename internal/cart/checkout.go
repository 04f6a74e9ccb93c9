package cart

import (
	"context"
	"time"

	"github.com/geocoder89/storefront/internal/apperr"
	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/shopspring/decimal"
)

// taxRate is applied to the subtotal. Shipping is always free.
var taxRate = decimal.RequireFromString("0.07")

const (
	defaultCheckoutDelay = 1500 * time.Millisecond
	orderPlacedMessage   = "Order placed successfully!"
)

// Summary holds the figures an order summary shows. Nothing here is stored.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// Receipt describes a completed simulated checkout.
type Receipt struct {
	Lines    []Line    `json:"lines"`
	Summary  Summary   `json:"summary"`
	PlacedAt time.Time `json:"placedAt"`
}

type CheckoutConfig struct {
	Delay    time.Duration
	Notifier notifications.Notifier
}

func defaultCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{Delay: defaultCheckoutDelay}
}

type Option func(*Cart)

func WithCheckoutDelay(d time.Duration) Option {
	return func(c *Cart) {
		if d >= 0 {
			c.checkout.Delay = d
		}
	}
}

func WithNotifier(n notifications.Notifier) Option {
	return func(c *Cart) {
		c.checkout.Notifier = n
	}
}

func summarize(subtotal decimal.Decimal, count int) Summary {
	tax := subtotal.Mul(taxRate).Round(2)
	shipping := decimal.Zero

	return Summary{
		Subtotal: subtotal.Round(2),
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(tax).Add(shipping).Round(2),
		Count:    count,
	}
}

func (c *Cart) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return summarize(c.totalLocked(), c.countLocked())
}

// Checkout simulates placing an order: it waits for the configured delay,
// empties the cart and posts a success notice. No order is recorded and no
// stock is touched. Cancelling ctx during the wait leaves the cart intact.
func (c *Cart) Checkout(ctx context.Context) (Receipt, error) {
	c.mu.Lock()
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return Receipt{}, apperr.Validation("cart is empty")
	}
	cfg := c.checkout
	c.mu.Unlock()

	if cfg.Delay > 0 {
		t := time.NewTimer(cfg.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Receipt{}, ctx.Err()
		case <-t.C:
		}
	}

	c.mu.Lock()
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return Receipt{}, apperr.Validation("cart is empty")
	}
	receipt := Receipt{
		Lines:    c.copyLines(),
		Summary:  summarize(c.totalLocked(), c.countLocked()),
		PlacedAt: time.Now().UTC(),
	}
	c.lines = nil
	c.unlockAndPublish()

	if cfg.Notifier != nil {
		// the order is already "placed"; a failed notice does not undo it
		_ = cfg.Notifier.Notify(ctx, notifications.Notice{
			Message: orderPlacedMessage,
			Kind:    notifications.KindSuccess,
		})
	}

	return receipt, nil
}
