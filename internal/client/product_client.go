package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/invotrac/internal/domain"
)

const (
	headerRequestID = "X-Request-ID"
	productsPath    = "/products/"
	maxBodyBytes    = 8 << 20
)

// ProductClient talks to the products REST backend.
type ProductClient struct {
	baseURL string
	http    *http.Client
}

func NewProductClient(baseURL string, timeout time.Duration, logger *slog.Logger) *ProductClient {
	if logger == nil {
		logger = slog.Default()
	}
	transport := otelhttp.NewTransport(&loggingTransport{next: http.DefaultTransport, logger: logger})
	return &ProductClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (c *ProductClient) BaseURL() string {
	return c.baseURL
}

func (c *ProductClient) List(ctx context.Context) ([]domain.Product, error) {
	body, _, err := c.do(ctx, http.MethodGet, productsPath, nil)
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("%w: decode product list: %v", ErrInvalidResponse, err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (c *ProductClient) Get(ctx context.Context, id int64) (domain.Product, error) {
	body, _, err := c.do(ctx, http.MethodGet, productPath(id), nil)
	if err != nil {
		return domain.Product{}, err
	}
	var miss struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &miss) == nil && miss.Error != "" {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, miss.Error)
	}
	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.Product{}, fmt.Errorf("%w: decode product: %v", ErrInvalidResponse, err)
	}
	return p, nil
}

func (c *ProductClient) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	body, _, err := c.do(ctx, http.MethodPost, productsPath, p)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeMutation(body, p)
}

func (c *ProductClient) Update(ctx context.Context, id int64, p domain.Product) (domain.Product, error) {
	p.ID = id
	body, _, err := c.do(ctx, http.MethodPut, productPath(id), p)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeMutation(body, p)
}

func (c *ProductClient) Delete(ctx context.Context, id int64) error {
	_, _, err := c.do(ctx, http.MethodDelete, productPath(id), nil)
	return err
}

// Ping issues a product listing and reports only reachability.
func (c *ProductClient) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, productsPath, nil)
	return err
}

func (c *ProductClient) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", ErrBackendUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
	}
	return body, resp.StatusCode, nil
}

// decodeMutation accepts a bare product, a {"message","product"} envelope or
// an empty body, in which case the submitted product is echoed back.
func decodeMutation(body []byte, submitted domain.Product) (domain.Product, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return submitted, nil
	}
	var envelope struct {
		Message string          `json:"message"`
		Product json.RawMessage `json:"product"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return domain.Product{}, fmt.Errorf("%w: decode mutation: %v", ErrInvalidResponse, err)
	}
	raw := body
	if len(envelope.Product) > 0 && string(envelope.Product) != "null" {
		raw = envelope.Product
	} else if envelope.Message != "" {
		return submitted, nil
	}
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Product{}, fmt.Errorf("%w: decode product: %v", ErrInvalidResponse, err)
	}
	return p, nil
}

func productPath(id int64) string {
	return productsPath + strconv.FormatInt(id, 10)
}
