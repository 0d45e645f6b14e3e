// Package handler contains the HTTP surface the storefront UI talks to.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/apperror"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/gateway"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/model"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/session"
)

// PhoneValidator validates 10-digit subscriber numbers.
var PhoneValidator = func(fl validator.FieldLevel) bool {
	pattern := `^\d{10}$`
	matched, _ := regexp.MatchString(pattern, fl.Field().String())
	return matched
}

// Gateway is the slice of the API client the handlers need.
type Gateway interface {
	VerifyUser(ctx context.Context, phoneNumber string) (*gateway.VerifyUserResponse, error)
	RegisterUser(ctx context.Context, name, phoneNumber, uniqueID string) (*gateway.RegisterUserResponse, error)
	PurchaseProduct(ctx context.Context, productID, variationID, token string) (*gateway.PurchaseResponse, error)
	UserOrders(ctx context.Context, token string) ([]model.Order, error)
	NewProducts(ctx context.Context) ([]model.Product, error)
}

// Handler wraps the storefront operations with logging, validation and the
// session store.
type Handler struct {
	log      *zap.Logger
	api      Gateway
	sessions *session.Store
	validate *validator.Validate
}

// New creates a new Handler instance.
func New(log *zap.Logger, api Gateway, sessions *session.Store, v *validator.Validate) *Handler {
	return &Handler{log: log, api: api, sessions: sessions, validate: v}
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// VerifyUser submits a phone number. Known users come back with a token and
// are logged in right away, skipping the OTP step.
func (h *Handler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.api.VerifyUser(r.Context(), req.PhoneNumber)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if resp.Token != nil && resp.User != nil {
		if _, err := h.sessions.Login(session.HTTPJar(w, r), resp.Token.Access, *resp.User); err != nil {
			h.writeError(w, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// RegisterUser creates or re-authenticates a user and logs them in.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	uniqueID := req.UniqueID
	if uniqueID == "" {
		uniqueID = uuid.NewString()
	}

	resp, err := h.api.RegisterUser(r.Context(), req.Name, req.PhoneNumber, uniqueID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user := model.User{ID: resp.UserID, Name: resp.Name, PhoneNumber: resp.PhoneNumber}
	if _, err := h.sessions.Login(session.HTTPJar(w, r), resp.Token.Access, user); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Logout clears the auth cookies. Best-effort: it always answers Ok.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(session.HTTPJar(w, r))
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "Ok"})
}

// Session echoes the rehydrated browser state so the UI can render without
// guessing.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Init(session.HTTPJar(w, r))
	h.writeJSON(w, http.StatusOK, map[string]any{
		"authenticated":          sess.Authenticated,
		"user":                   sess.User,
		"last_purchased_product": sess.LastPurchased,
	})
}

// NewProducts returns the sanitized catalog.
func (h *Handler) NewProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.api.NewProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// PurchaseProduct buys a product for the authenticated session. Remote
// failures are always surfaced, including a success=false answer.
func (h *Handler) PurchaseProduct(w http.ResponseWriter, r *http.Request) {
	jar := session.HTTPJar(w, r)
	sess := h.sessions.Init(jar)
	if !sess.Authenticated {
		h.writeError(w, apperror.Auth("authentication required"))
		return
	}

	var req model.PurchaseRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.api.PurchaseProduct(r.Context(), req.ProductID, req.VariationID, sess.Token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "purchase failed"
		}
		h.writeError(w, apperror.HTTP(http.StatusUnprocessableEntity, msg))
		return
	}

	if resp.Order != nil {
		sess.AddOrder(*resp.Order)
		snapshot := model.PurchasedProduct{
			Name:          resp.Order.ProductName,
			Image:         resp.Order.ProductImage,
			Price:         resp.Order.ProductAmount,
			OriginalPrice: resp.Order.ProductMRP,
			Size:          req.Size,
			ProductID:     req.ProductID,
		}
		if err := h.sessions.SetLastPurchased(jar, sess, snapshot); err != nil {
			// The purchase went through; a lost snapshot only degrades the
			// confirmation view.
			h.log.Error("failed to persist last purchase", zap.Error(err))
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// UserOrders returns the order history. A failed fetch renders as an empty
// list with an error flag rather than a dead view.
func (h *Handler) UserOrders(w http.ResponseWriter, r *http.Request) {
	jar := session.HTTPJar(w, r)
	sess := h.sessions.Init(jar)
	if !sess.Authenticated {
		h.writeError(w, apperror.Auth("authentication required"))
		return
	}

	orders, err := h.api.UserOrders(r.Context(), sess.Token)
	if err != nil {
		appErr := apperror.From(err)
		sess.SetOrdersError(appErr.Message)
		h.writeJSON(w, h.outwardStatus(appErr), map[string]any{
			"orders": []model.Order{},
			"error":  appErr.Message,
		})
		return
	}

	sess.SetOrders(orders)
	h.writeJSON(w, http.StatusOK, map[string]any{"orders": sess.Orders})
}

// decode parses and validates a JSON request body, answering 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request payload",
		})
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, apperror.CustomValidationError(err))
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	appErr := apperror.From(err)
	h.writeJSON(w, h.outwardStatus(appErr), appErr)
}

// outwardStatus maps a gateway error to the status this service answers
// with. Transport failures against the remote system are a bad gateway from
// the browser's point of view.
func (h *Handler) outwardStatus(appErr *apperror.Error) int {
	if appErr.Kind == apperror.KindNetwork {
		return http.StatusBadGateway
	}
	return appErr.Status
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("unable to write response stream", zap.Error(err))
	}
}
