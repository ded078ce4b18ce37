package order

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/cart"
	"github.com/aaravmahajanofficial/storefront/internal/client"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/guard"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

const (
	retryMessage    = "Error placing order. Please try again."
	rejectedMessage = "Failed to place order"
)

type API interface {
	CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.InvoiceFile, error)
}

type Sessions interface {
	Get(ctx context.Context) (*models.Session, error)
}

type Cart interface {
	Lines(ctx context.Context) ([]models.CartLine, error)
	Clear(ctx context.Context) error
}

type InvoiceSaver interface {
	Save(ctx context.Context, file *models.InvoiceFile) (string, error)
}

type Result struct {
	Invoice *models.InvoiceFile
	Next    guard.Screen
}

type Submitter struct {
	api      API
	sessions Sessions
	cart     Cart
	saver    InvoiceSaver
}

func NewSubmitter(api API, sessions Sessions, cart Cart, saver InvoiceSaver) *Submitter {
	return &Submitter{api: api, sessions: sessions, cart: cart, saver: saver}
}

// BuildRequest turns cart lines into the order payload.
func BuildRequest(lines []models.CartLine) models.CreateOrderRequest {
	products := make([]models.OrderLine, 0, len(lines))

	for _, line := range lines {
		products = append(products, models.OrderLine{
			ProductID: line.ID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	return models.CreateOrderRequest{Products: products, TotalAmount: cart.ComputeTotal(lines)}
}

// Submit places the current cart as one order. The cart is cleared only once
// the server has accepted the order; any earlier failure leaves it intact.
// Nothing is retried.
func (s *Submitter) Submit(ctx context.Context) (*Result, error) {
	logger := logging.FromContext(ctx)

	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}

	if sess == nil {
		metrics.RecordOrder(metrics.ResultRejected)
		return nil, appErrors.UnauthenticatedError("Please login to place order")
	}

	lines, err := s.cart.Lines(ctx)
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		metrics.RecordOrder(metrics.ResultRejected)
		return nil, appErrors.ValidationError("Cart is empty")
	}

	req := BuildRequest(lines)

	file, err := s.api.CreateOrder(ctx, sess.Token, req)
	if err != nil {
		metrics.RecordOrder(metrics.ResultError)
		logger.Error("Order error", slog.String("error", err.Error()))

		if appErrors.HasCode(err, appErrors.ErrCodeNetwork) {
			return nil, appErrors.NetworkError(retryMessage).WithError(err)
		}

		if appErrors.HasCode(err, appErrors.ErrCodeServer) && errors.Is(err, client.ErrNoReason) {
			appErr, _ := appErrors.IsAppError(err)
			return nil, appErrors.ServerError(rejectedMessage, appErr.StatusCode).WithError(err)
		}

		return nil, err
	}

	metrics.RecordOrder(metrics.ResultOK)
	logger.Info("Order placed", slog.Int("lines", len(req.Products)), slog.Float64("total", req.TotalAmount))

	// The order exists server-side from here on, so the cart goes even if the
	// download cannot be written.
	_, saveErr := s.saver.Save(ctx, file)

	if err := s.cart.Clear(ctx); err != nil {
		return nil, err
	}

	if saveErr != nil {
		if appErr, ok := appErrors.IsAppError(saveErr); ok {
			appErr.WithDetail("The order was placed but its invoice could not be saved")
		}
		return nil, saveErr
	}

	return &Result{Invoice: file, Next: guard.Products}, nil
}
