package cart

import (
	"context"
	"fmt"
	"log/slog"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/events"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

// Engine reconciles cart requests against the persisted cart and the caller's
// catalog snapshot. Nothing here talks to the network: stock checks run
// against locally tracked figures only.
type Engine struct {
	store   *Store
	changes *events.Broadcaster[models.CartState]
}

func NewEngine(store *Store) *Engine {
	return &Engine{
		store:   store,
		changes: events.NewBroadcaster[models.CartState](),
	}
}

// AddToCart merges qty units of product into the cart. On success the
// product's quantity is decremented in place so later attempts in the same
// session see the reduced stock; the server is never told.
func (e *Engine) AddToCart(ctx context.Context, product *models.Product, qty int) (*models.CartState, error) {
	logger := logging.FromContext(ctx)

	if qty < 1 {
		metrics.RecordCartOperation("add", metrics.ResultRejected)
		return nil, appErrors.OutOfStockError("Quantity must be a positive integer")
	}

	if qty > int(product.Quantity) {
		metrics.RecordCartOperation("add", metrics.ResultRejected)
		logger.Debug("Add rejected", slog.String("product", product.Key()), slog.Int("requested", qty), slog.Int("available", int(product.Quantity)))
		return nil, appErrors.OutOfStockError("Item is out of stock!")
	}

	lines, err := e.store.Load(ctx)
	if err != nil {
		metrics.RecordCartOperation("add", metrics.ResultError)
		return nil, err
	}

	updated := clone(lines)

	if i := indexOf(updated, product.Key()); i >= 0 {
		updated[i].Quantity += qty
		updated[i].TotalAvailable -= models.Stock(qty)
	} else {
		updated = append(updated, models.CartLine{
			ID:             product.ID,
			Name:           product.Name,
			Category:       product.Category,
			Price:          product.Price,
			Quantity:       qty,
			TotalAvailable: product.Quantity - models.Stock(qty),
		})
	}

	if err := e.store.Save(ctx, updated); err != nil {
		metrics.RecordCartOperation("add", metrics.ResultError)
		return nil, err
	}

	product.Quantity -= models.Stock(qty)

	logger.Info("Added to cart", slog.String("product", product.Key()), slog.Int("quantity", qty))
	metrics.RecordCartOperation("add", metrics.ResultOK)

	return e.publish(updated), nil
}

// UpdateQuantity moves the line at index one unit up or down. Decrementing a
// single unit removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, index int, direction models.Direction) (*models.CartState, error) {
	op := string(direction)

	lines, err := e.store.Load(ctx)
	if err != nil {
		metrics.RecordCartOperation(op, metrics.ResultError)
		return nil, err
	}

	if index < 0 || index >= len(lines) {
		metrics.RecordCartOperation(op, metrics.ResultRejected)
		return nil, appErrors.ValidationError(fmt.Sprintf("Cart line %d does not exist", index+1))
	}

	updated := clone(lines)
	line := &updated[index]

	switch direction {
	case models.Increment:
		if line.Quantity >= int(line.TotalAvailable) {
			metrics.RecordCartOperation(op, metrics.ResultRejected)
			return nil, appErrors.OutOfStockError(fmt.Sprintf("Only %d items available", int(line.TotalAvailable)))
		}
		line.Quantity++
	case models.Decrement:
		if line.Quantity == 1 {
			updated = append(updated[:index], updated[index+1:]...)
		} else {
			line.Quantity--
		}
	default:
		metrics.RecordCartOperation("update", metrics.ResultRejected)
		return nil, appErrors.ValidationError(fmt.Sprintf("Unknown direction %q", direction))
	}

	if err := e.store.Save(ctx, updated); err != nil {
		metrics.RecordCartOperation(op, metrics.ResultError)
		return nil, err
	}

	metrics.RecordCartOperation(op, metrics.ResultOK)

	return e.publish(updated), nil
}

// Clear drops the persisted cart. Clearing an empty cart is not an error.
func (e *Engine) Clear(ctx context.Context) error {
	if err := e.store.Clear(ctx); err != nil {
		metrics.RecordCartOperation("clear", metrics.ResultError)
		return err
	}

	metrics.RecordCartOperation("clear", metrics.ResultOK)
	e.publish(nil)

	return nil
}

func (e *Engine) Lines(ctx context.Context) ([]models.CartLine, error) {
	return e.store.Load(ctx)
}

func (e *Engine) State(ctx context.Context) (*models.CartState, error) {
	lines, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &models.CartState{Lines: lines, Total: ComputeTotal(lines)}, nil
}

// Subscribe is called with the new lines and total after every mutation.
func (e *Engine) Subscribe(fn func(models.CartState)) func() {
	return e.changes.Subscribe(fn)
}

func (e *Engine) publish(lines []models.CartLine) *models.CartState {
	if lines == nil {
		lines = []models.CartLine{}
	}

	state := models.CartState{Lines: lines, Total: ComputeTotal(lines)}
	e.changes.Publish(state)

	return &state
}

// ComputeTotal is the unrounded sum of price * quantity.
func ComputeTotal(lines []models.CartLine) float64 {
	var total float64

	for i := range lines {
		total += lines[i].Subtotal()
	}

	return total
}

func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func indexOf(lines []models.CartLine, key string) int {
	for i := range lines {
		if lines[i].Key() == key {
			return i
		}
	}

	return -1
}

func clone(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)

	return out
}
