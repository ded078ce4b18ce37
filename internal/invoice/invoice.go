package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

type API interface {
	GetInvoice(ctx context.Context, token, orderID string) (*models.Invoice, error)
}

type Sessions interface {
	Get(ctx context.Context) (*models.Session, error)
}

type Service struct {
	api           API
	sessions      Sessions
	surfaceErrors bool
}

func NewService(api API, sessions Sessions, surfaceErrors bool) *Service {
	return &Service{api: api, sessions: sessions, surfaceErrors: surfaceErrors}
}

// Fetch loads one invoice. With swallowed fetch errors a remote failure
// yields (nil, nil) and the screen shows nothing.
func (s *Service) Fetch(ctx context.Context, orderID string) (*models.Invoice, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, appErrors.ValidationError("Order id is required")
	}

	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}

	if sess == nil {
		return nil, appErrors.UnauthenticatedError("Please log in to view invoices")
	}

	invoice, err := s.api.GetInvoice(ctx, sess.Token, orderID)
	if err != nil {
		if s.surfaceErrors {
			return nil, err
		}

		logging.FromContext(ctx).Error("Error fetching invoice", slog.String("order_id", orderID), slog.String("error", err.Error()))
		return nil, nil
	}

	return invoice, nil
}

// Saver writes invoice documents into the download directory.
type Saver struct {
	dir string
}

func NewSaver(dir string) *Saver {
	if dir == "" {
		dir = "."
	}

	return &Saver{dir: dir}
}

func (s *Saver) Dir() string {
	return s.dir
}

// Save writes file under its own name, replacing any earlier download with
// the same name, and records the resulting path on file.
func (s *Saver) Save(ctx context.Context, file *models.InvoiceFile) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", appErrors.StorageError("Failed to create download directory").WithError(err)
	}

	path := filepath.Join(s.dir, filepath.Base(file.Filename))

	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return "", appErrors.StorageError(fmt.Sprintf("Failed to save %s", file.Filename)).WithError(err)
	}

	file.Path = path
	logging.FromContext(ctx).Info("Invoice saved", slog.String("path", path), slog.Int("bytes", len(file.Data)))

	return path, nil
}
