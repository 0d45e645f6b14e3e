// Package gateway is the single egress point to the remote storefront API.
// Every outbound URL is checked against a hostname allow-list before any
// network I/O happens, and every URL-carrying payload field is sanitized
// before it reaches callers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/apperror"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/config"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/model"
)

// Client calls the remote storefront REST API. Allow-lists are fixed at
// construction and never change afterwards.
type Client struct {
	log          *zap.Logger
	http         *http.Client
	baseURL      string
	allowedHosts map[string]struct{}
	imageHosts   map[string]struct{}
}

// New builds a Client from the process configuration.
func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		log:          logger,
		http:         &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:      cfg.APIBaseURL,
		allowedHosts: hostSet(cfg.AllowedHosts),
		imageHosts:   hostSet(cfg.AllowedImageHosts),
	}
}

func hostSet(hosts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[h] = struct{}{}
	}
	return set
}

// TokenPayload wraps the opaque access token issued by the remote system.
type TokenPayload struct {
	Access string `json:"access"`
}

// VerifyUserResponse is the outcome of submitting a phone number. User and
// Token are present only when the remote system already knows the number.
type VerifyUserResponse struct {
	OTP   string        `json:"otp"`
	User  *model.User   `json:"user,omitempty"`
	Token *TokenPayload `json:"token,omitempty"`
}

// RegisterUserResponse is the outcome of a login-register exchange.
type RegisterUserResponse struct {
	Token       TokenPayload `json:"token"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"name"`
	PhoneNumber string       `json:"phone_number"`
}

// PurchaseResponse is the outcome of a purchase attempt. Order, when present,
// has already been sanitized.
type PurchaseResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	OrderID string       `json:"order_id,omitempty"`
	Order   *model.Order `json:"order,omitempty"`
}

// VerifyUser submits a phone number. The remote system decides whether this
// is a known user (user and token present) or a new one.
func (c *Client) VerifyUser(ctx context.Context, phoneNumber string) (*VerifyUserResponse, error) {
	body := map[string]string{"phone_number": phoneNumber}
	var out VerifyUserResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/verify/", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterUser creates or re-authenticates a user.
func (c *Client) RegisterUser(ctx context.Context, name, phoneNumber, uniqueID string) (*RegisterUserResponse, error) {
	body := map[string]string{
		"name":         name,
		"phone_number": phoneNumber,
		"unique_id":    uniqueID,
	}
	var out RegisterUserResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/login-register/", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurchaseProduct buys a product. Variation identity wins: when variationID
// is set the request body references the variation row, not the base product.
func (c *Client) PurchaseProduct(ctx context.Context, productID, variationID, token string) (*PurchaseResponse, error) {
	if token == "" {
		return nil, apperror.Auth("authentication required")
	}
	body := map[string]string{"product_id": productID}
	if variationID != "" {
		body = map[string]string{"variation_product_id": variationID}
	}
	var out PurchaseResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/purchase-product/", token, body, &out); err != nil {
		return nil, err
	}
	if out.Order != nil {
		sanitized := c.sanitizeOrder(*out.Order)
		out.Order = &sanitized
	}
	return &out, nil
}

// UserOrders fetches the caller's order history. Every order passes through
// image sanitization before being returned.
func (c *Client) UserOrders(ctx context.Context, token string) ([]model.Order, error) {
	if token == "" {
		return nil, apperror.Auth("authentication required")
	}
	var payload struct {
		Orders []model.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/user-orders/", token, nil, &payload); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		orders = append(orders, c.sanitizeOrder(o))
	}
	return orders, nil
}

// NewProducts fetches the current catalog. The remote system answers with one
// of several envelope shapes; an unrecognized one yields an empty list.
func (c *Client) NewProducts(ctx context.Context) ([]model.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/new-products/", "", nil, &raw); err != nil {
		return nil, err
	}
	payloads := decodeProductEnvelope(raw)
	products := make([]model.Product, 0, len(payloads))
	for _, p := range payloads {
		products = append(products, c.sanitizeProduct(p))
	}
	return products, nil
}

// do performs one outbound call. The allow-list check runs before the request
// is built, so a rejected URL causes zero network side effects.
func (c *Client) do(ctx context.Context, method, target, token string, body, out any) error {
	if err := c.checkURL(target); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.Network("failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apperror.Network("failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("storefront API unreachable", zap.String("url", target), zap.Error(err))
		return apperror.Network("failed to reach storefront API")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Network("failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("storefront API error",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode))
		return apperror.HTTP(resp.StatusCode, errorMessage(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperror.Network("unexpected response from storefront API")
	}
	return nil
}

func (c *Client) checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return apperror.Validation("invalid URL: domain not allowed")
	}
	if _, ok := c.allowedHosts[u.Hostname()]; !ok {
		return apperror.Validation("invalid URL: domain not allowed")
	}
	return nil
}

// errorMessage extracts the remote error body's message, falling back to a
// generic one when the body is not parseable.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "request failed"
}
