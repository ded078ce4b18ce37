package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

type API interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	AddProduct(ctx context.Context, token string, req models.AddProductRequest) error
}

type Sessions interface {
	Get(ctx context.Context) (*models.Session, error)
}

// Snapshot is the locally held product list. Its quantities are decremented
// by the cart engine and are never reconciled with the server.
type Snapshot struct {
	mu       sync.RWMutex
	products []*models.Product
}

func (s *Snapshot) Replace(products []models.Product) {
	items := make([]*models.Product, len(products))
	for i := range products {
		p := products[i]
		items[i] = &p
	}

	s.mu.Lock()
	s.products = items
	s.mu.Unlock()
}

// Products returns the live entries; mutating them mutates the snapshot.
func (s *Snapshot) Products() []*models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Product, len(s.products))
	copy(out, s.products)

	return out
}

// At returns the product at the zero-based position shown in the listing.
func (s *Snapshot) At(index int) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.products) {
		return nil, appErrors.ValidationError(fmt.Sprintf("Product %d does not exist", index+1))
	}

	return s.products[index], nil
}

func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.products)
}

type Service struct {
	api           API
	sessions      Sessions
	snapshot      *Snapshot
	surfaceErrors bool
	validate      *validator.Validate
	sanitizer     *bluemonday.Policy
}

func NewService(api API, sessions Sessions, surfaceErrors bool) *Service {
	return &Service{
		api:           api,
		sessions:      sessions,
		snapshot:      &Snapshot{},
		surfaceErrors: surfaceErrors,
		validate:      validator.New(),
		sanitizer:     bluemonday.StrictPolicy(),
	}
}

func (s *Service) Snapshot() *Snapshot {
	return s.snapshot
}

// Refresh replaces the snapshot with the server's listing. When fetch errors
// are swallowed a failure is only logged and the previous snapshot stays.
func (s *Service) Refresh(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	products, err := s.api.ListProducts(ctx)
	if err != nil {
		if s.surfaceErrors {
			return err
		}

		logger.Error("Error fetching products", slog.String("error", err.Error()))
		return nil
	}

	s.snapshot.Replace(products)
	logger.Debug("Catalog refreshed", slog.Int("count", len(products)))

	return nil
}

// AddProduct creates a product on the server. Only administrators may call it.
func (s *Service) AddProduct(ctx context.Context, req models.AddProductRequest) error {
	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return err
	}

	if sess == nil {
		return appErrors.UnauthenticatedError("Please log in to add products")
	}

	if !sess.IsAdministrator() {
		return appErrors.ForbiddenError("Only administrators can add products")
	}

	// The server renders names into invoice HTML.
	req.Name = strings.TrimSpace(s.sanitizer.Sanitize(req.Name))
	req.Category = strings.TrimSpace(s.sanitizer.Sanitize(req.Category))

	if err := utils.ValidateStruct(s.validate, req); err != nil {
		return err
	}

	if err := s.api.AddProduct(ctx, sess.Token, req); err != nil {
		logging.FromContext(ctx).Warn("Failed to add product", slog.String("error", err.Error()))
		return err
	}

	logging.FromContext(ctx).Info("Product added", slog.String("name", req.Name))

	return nil
}
