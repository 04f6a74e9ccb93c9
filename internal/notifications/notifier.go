package notifications

import (
	"context"
	"errors"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

const DefaultDuration = 3 * time.Second

// Notice is a short user-facing message, the storefront's toast.
type Notice struct {
	Message  string        `json:"message"`
	Kind     Kind          `json:"type"`
	Duration time.Duration `json:"duration"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Multi fans a notice out to every notifier, collecting their errors.
func Multi(ns ...Notifier) Notifier {
	return multi(ns)
}

type multi []Notifier

func (m multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, x := range m {
		if x == nil {
			continue
		}
		if err := x.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
