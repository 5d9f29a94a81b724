// Package worker runs the abandoned-cart recovery sweep: a periodic poll that
// finds stale customer carts, refreshes them through the cart service and
// emails the customer a reminder.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/email"
	"github.com/dukerupert/vanir/internal/service"
)

// AbandonedCart is a customer cart eligible for a recovery reminder.
type AbandonedCart struct {
	CartID        pgtype.UUID
	StoreID       pgtype.UUID
	Code          string
	CustomerEmail string
	CustomerName  string
}

// CartFinder lists abandoned carts and records sent reminders.
type CartFinder interface {
	FindAbandonedCarts(ctx context.Context, olderThan time.Duration, limit int32) ([]AbandonedCart, error)
	MarkRecoveryEmailSent(ctx context.Context, cartID pgtype.UUID) error
}

// RecoverySender sends the recovery email. Satisfied by *email.Service.
type RecoverySender interface {
	SendCartRecovery(ctx context.Context, data email.CartRecoveryEmail) error
}

// Config holds recovery worker configuration.
type Config struct {
	// PollInterval is how often to sweep for abandoned carts.
	PollInterval time.Duration

	// AbandonAfter is how long a cart must sit untouched before it counts
	// as abandoned.
	AbandonAfter time.Duration

	// BatchSize caps how many carts one sweep processes.
	BatchSize int32

	// CartURLBase prefixes the cart code to build the recovery link,
	// e.g. "https://shop.example.com/cart/".
	CartURLBase string
}

// RecoveryWorker periodically emails customers about carts they walked away
// from. Each cart is refreshed through the service before the email composes,
// so obsolete carts get purged instead of reminded about.
type RecoveryWorker struct {
	config  Config
	finder  CartFinder
	carts   service.CartService
	catalog domain.CatalogReader
	emails  RecoverySender
	logger  *slog.Logger
}

// NewRecoveryWorker creates a new recovery worker.
func NewRecoveryWorker(
	finder CartFinder,
	carts service.CartService,
	catalog domain.CatalogReader,
	emails RecoverySender,
	config Config,
	logger *slog.Logger,
) *RecoveryWorker {
	if config.PollInterval == 0 {
		config.PollInterval = 15 * time.Minute
	}
	if config.AbandonAfter == 0 {
		config.AbandonAfter = 4 * time.Hour
	}
	if config.BatchSize == 0 {
		config.BatchSize = 50
	}

	return &RecoveryWorker{
		config:  config,
		finder:  finder,
		carts:   carts,
		catalog: catalog,
		emails:  emails,
		logger:  logger,
	}
}

// Start sweeps until the context is cancelled.
func (w *RecoveryWorker) Start(ctx context.Context) error {
	w.logger.Info("recovery worker starting",
		"poll_interval", w.config.PollInterval,
		"abandon_after", w.config.AbandonAfter,
		"batch_size", w.config.BatchSize,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("recovery worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.Error("recovery sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one pass: find abandoned carts and remind each customer.
// Per-cart failures are logged and skipped so one bad cart cannot stall
// the rest of the batch.
func (w *RecoveryWorker) Sweep(ctx context.Context) error {
	carts, err := w.finder.FindAbandonedCarts(ctx, w.config.AbandonAfter, w.config.BatchSize)
	if err != nil {
		return err
	}

	for _, ac := range carts {
		if err := w.remind(ctx, ac); err != nil {
			w.logger.Error("failed to send cart recovery email",
				"cart_id", domain.UUIDString(ac.CartID),
				"error", err,
			)
		}
	}
	return nil
}

// remind refreshes one abandoned cart and emails the customer about it.
func (w *RecoveryWorker) remind(ctx context.Context, ac AbandonedCart) error {
	cart, err := w.carts.GetCartByCode(ctx, ac.StoreID, ac.Code)
	if err != nil {
		// The read-side refresh purges carts whose contents went stale.
		// Nothing left to recover.
		if domain.IsCode(err, domain.ENOTFOUND) {
			w.logger.Debug("abandoned cart gone, skipping reminder",
				"cart_id", domain.UUIDString(ac.CartID))
			return nil
		}
		return err
	}

	data, err := w.composeEmail(ctx, ac, cart)
	if err != nil {
		return err
	}

	if err := w.emails.SendCartRecovery(ctx, data); err != nil {
		return err
	}

	if err := w.finder.MarkRecoveryEmailSent(ctx, cart.ID); err != nil {
		return err
	}

	w.logger.Info("sent cart recovery email",
		"cart_id", domain.UUIDString(cart.ID),
		"store_id", domain.UUIDString(cart.StoreID),
	)
	return nil
}

func (w *RecoveryWorker) composeEmail(ctx context.Context, ac AbandonedCart, cart *domain.Cart) (email.CartRecoveryEmail, error) {
	data := email.CartRecoveryEmail{
		CustomerEmail: ac.CustomerEmail,
		CustomerName:  ac.CustomerName,
		CartURL:       w.config.CartURLBase + cart.Code,
		SubtotalCents: cart.SubtotalCents(),
	}

	for _, item := range cart.Items {
		product, err := w.catalog.FindProductBySKU(ctx, item.SKU)
		if err != nil {
			// Races with catalog edits between refresh and compose.
			if errors.Is(err, domain.ErrProductNotFound) {
				data.RemovedItems = append(data.RemovedItems, item.SKU)
				continue
			}
			return email.CartRecoveryEmail{}, err
		}

		options, err := w.optionsName(ctx, item)
		if err != nil {
			return email.CartRecoveryEmail{}, err
		}

		data.Items = append(data.Items, email.OrderItem{
			ProductName: product.Name,
			OptionsName: options,
			Quantity:    item.Quantity,
			PriceCents:  item.UnitPriceCents,
			TotalCents:  item.SubtotalCents,
		})
	}
	return data, nil
}

// optionsName renders an item's attribute selections as "coarse, gift wrap".
func (w *RecoveryWorker) optionsName(ctx context.Context, item domain.CartItem) (string, error) {
	if len(item.Selections) == 0 {
		return "", nil
	}

	values := make([]string, 0, len(item.Selections))
	for _, sel := range item.Selections {
		av, err := w.catalog.FindAttributeValueByID(ctx, sel.AttributeValueID)
		if err != nil {
			if errors.Is(err, domain.ErrAttributeValueNotFound) {
				continue
			}
			return "", err
		}
		values = append(values, av.Value)
	}
	return strings.Join(values, ", "), nil
}
