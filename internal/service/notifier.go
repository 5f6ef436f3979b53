package service

import "context"

// Notification is one user-facing event the services emit: cart changes,
// purchases, session expiry. The rendering layer decides how to present it.
type Notification struct {
	Kind    string
	Message string
	Fields  map[string]any
}

// Notification kinds emitted by the catalog, cart and session services.
const (
	NotifyCartUpdated       = "cart.updated"
	NotifyCartCleared       = "cart.cleared"
	NotifyPurchaseCompleted = "purchase.completed"
	NotifySessionExpired    = "session.expired"
	NotifySessionStarted    = "session.started"
)

// Notifier is the outbound notification port. Implementations must never
// block the calling operation on delivery.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}
