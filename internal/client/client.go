// Package client talks to the remote shop service over its JSON REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

const (
	DefaultInvoiceFilename = "invoice.pdf"

	maxErrorBody = 64 << 10
)

// ErrNoReason marks a JSON error reply that carried no message.
var ErrNoReason = errors.New("reply carried no message")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithTransport replaces the network round tripper under the instrumentation chain.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = NewTransport(rt)
	}
}

func New(cfg config.API, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: NewTransport(nil),
			Timeout:   cfg.RequestTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", "", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out models.LoginResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	resp, err := c.do(ctx, http.MethodPost, "/register", "", req)
	if err != nil {
		return err
	}

	drain(resp)

	return nil
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	resp, err := c.do(ctx, http.MethodGet, "/products", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var products []models.Product
	if err := decode(resp, &products); err != nil {
		return nil, err
	}

	return products, nil
}

func (c *Client) AddProduct(ctx context.Context, token string, req models.AddProductRequest) error {
	resp, err := c.do(ctx, http.MethodPost, "/add_product", token, req)
	if err != nil {
		return err
	}

	drain(resp)

	return nil
}

// CreateOrder posts the order and returns the invoice document the service
// answers with. The file is not written anywhere.
func (c *Client) CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.InvoiceFile, error) {
	resp, err := c.do(ctx, http.MethodPost, "/create_order", token, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.NetworkError("Failed to read invoice").WithError(err)
	}

	return &models.InvoiceFile{
		Filename:    AttachmentFilename(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *Client) GetInvoice(ctx context.Context, token, orderID string) (*models.Invoice, error) {
	resp, err := c.do(ctx, http.MethodGet, "/invoice/"+url.PathEscape(orderID), token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var invoice models.Invoice
	if err := decode(resp, &invoice); err != nil {
		return nil, err
	}

	return &invoice, nil
}

// Ping reports whether the service answers at all. Any reply below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shop service unreachable: %w", err)
	}

	drain(resp)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("shop service answered %d", resp.StatusCode)
	}

	return nil
}

// AttachmentFilename extracts filename= from a Content-Disposition header,
// falling back to DefaultInvoiceFilename. Directory parts are dropped.
func AttachmentFilename(header string) string {
	if header == "" {
		return DefaultInvoiceFilename
	}

	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return DefaultInvoiceFilename
	}

	name := filepath.Base(filepath.Clean("/" + params["filename"]))
	if name == "/" || name == "." || name == "" {
		return DefaultInvoiceFilename
	}

	return name
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, appErrors.InternalError("Failed to encode request").WithError(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, appErrors.InternalError("Failed to build request").WithError(err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.NetworkError("Unable to reach the shop service").WithError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError(ctx, resp)
	}

	return resp, nil
}

func statusError(ctx context.Context, resp *http.Response) error {
	var body models.ErrorBody

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		// proxies answer with HTML pages
		logging.FromContext(ctx).Debug("Non-JSON error reply", slog.Int("http_status", resp.StatusCode))
		return appErrors.NetworkError("Malformed response from the shop service").
			WithStatus(resp.StatusCode).WithError(err)
	}

	var cause error
	message := body.Text()
	if message == "" {
		message = http.StatusText(resp.StatusCode)
		cause = ErrNoReason
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusUnprocessableEntity:
		// malformed bearer tokens come back as 422
		return appErrors.UnauthenticatedError(message).WithStatus(resp.StatusCode).WithError(cause)
	case http.StatusForbidden:
		return appErrors.ForbiddenError(message).WithStatus(resp.StatusCode).WithError(cause)
	default:
		return appErrors.ServerError(message, resp.StatusCode).WithError(cause)
	}
}

func decode(resp *http.Response, dest any) error {
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return appErrors.NetworkError("Malformed response from the shop service").WithError(err)
	}

	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
