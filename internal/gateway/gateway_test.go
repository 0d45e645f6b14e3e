package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/apperror"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/config"
)

type mockAPI struct {
	Server *httptest.Server
	Hits   int32
	Bodies [][]byte
	Status int
	Body   string
}

func newMockAPI(status int, body string) *mockAPI {
	m := &mockAPI{Status: status, Body: body}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.Hits, 1)
		data, _ := io.ReadAll(r.Body)
		m.Bodies = append(m.Bodies, data)
		w.WriteHeader(m.Status)
		_, _ = w.Write([]byte(m.Body))
	}))
	return m
}

// newClient points a Client at the mock server; its loopback host is on both
// allow-lists, plus cdn.example.com for images.
func newClient(t *testing.T, srv *mockAPI) *Client {
	t.Helper()
	u, err := url.Parse(srv.Server.URL)
	require.NoError(t, err)
	cfg := &config.Config{
		APIBaseURL:        srv.Server.URL + "/api",
		AllowedHosts:      []string{u.Hostname()},
		AllowedImageHosts: []string{u.Hostname(), "cdn.example.com"},
		RequestTimeout:    5 * time.Second,
	}
	return New(cfg, zaptest.NewLogger(t))
}

func TestVerifyUser_KnownUser(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{"otp":"1234","user":{"id":"u1","name":"Asha","phone_number":"9876543210"},"token":{"access":"tok"}}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	resp, err := c.VerifyUser(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "1234", resp.OTP)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u1", resp.User.ID)
	require.NotNil(t, resp.Token)
	assert.Equal(t, "tok", resp.Token.Access)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(srv.Bodies[0], &sent))
	assert.Equal(t, map[string]string{"phone_number": "9876543210"}, sent)
}

func TestVerifyUser_NewUser(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{"otp":"1234"}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	resp, err := c.VerifyUser(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Nil(t, resp.User)
	assert.Nil(t, resp.Token)
}

func TestRegisterUser(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{"token":{"access":"tok"},"user_id":"u2","name":"Ravi","phone_number":"9876543210"}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	resp, err := c.RegisterUser(context.Background(), "Ravi", "9876543210", "device-1")
	require.NoError(t, err)
	assert.Equal(t, "u2", resp.UserID)
	assert.Equal(t, "tok", resp.Token.Access)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(srv.Bodies[0], &sent))
	assert.Equal(t, "device-1", sent["unique_id"])
}

func TestRejectedHost_NoNetworkSideEffects(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `[]`)
	defer srv.Server.Close()

	cfg := &config.Config{
		APIBaseURL:        srv.Server.URL + "/api",
		AllowedHosts:      []string{"allowed.example.com"}, // mock server host is not on the list
		AllowedImageHosts: []string{"allowed.example.com"},
		RequestTimeout:    5 * time.Second,
	}
	c := New(cfg, zaptest.NewLogger(t))

	_, err := c.NewProducts(context.Background())
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(&srv.Hits), "rejected URL must never be sent")
}

func TestHTTPError_MessageExtraction(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "message in error body",
			status:     http.StatusConflict,
			body:       `{"message":"phone number already registered"}`,
			wantMsg:    "phone number already registered",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unparseable error body",
			status:     http.StatusInternalServerError,
			body:       `<html>oops</html>`,
			wantMsg:    "request failed",
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newMockAPI(tc.status, tc.body)
			defer srv.Server.Close()
			c := newClient(t, srv)

			_, err := c.VerifyUser(context.Background(), "9876543210")
			appErr := apperror.From(err)
			assert.Equal(t, apperror.KindHTTP, appErr.Kind)
			assert.Equal(t, tc.wantStatus, appErr.Status)
			assert.Equal(t, tc.wantMsg, appErr.Message)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{}`)
	c := newClient(t, srv)
	srv.Server.Close() // connection refused from here on

	_, err := c.VerifyUser(context.Background(), "9876543210")
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindNetwork, appErr.Kind)
}

func TestPurchaseProduct_VariationWins(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{"success":true,"message":"ok","order_id":"o1"}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	resp, err := c.PurchaseProduct(context.Background(), "p1", "v9", "tok-1234567890")
	require.NoError(t, err)
	assert.True(t, resp.Success)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(srv.Bodies[0], &sent))
	assert.Equal(t, map[string]string{"variation_product_id": "v9"}, sent)
}

func TestPurchaseProduct_ProductOnly(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{"success":true,"message":"ok"}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	_, err := c.PurchaseProduct(context.Background(), "p1", "", "tok-1234567890")
	require.NoError(t, err)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(srv.Bodies[0], &sent))
	assert.Equal(t, map[string]string{"product_id": "p1"}, sent)
}

func TestPurchaseProduct_RequiresToken(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	_, err := c.PurchaseProduct(context.Background(), "p1", "", "")
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindAuth, appErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(&srv.Hits))
}

func TestPurchaseProduct_SanitizesReturnedOrder(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{"success":true,"message":"ok","order_id":"o1","order":{"order_id":"o1","product_amount":99.5,"product_name":"Shoe","product_image":"https://evil.example.com/x.jpg","created_date":"2024-01-01","product_mrp":120}}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	resp, err := c.PurchaseProduct(context.Background(), "p1", "", "tok-1234567890")
	require.NoError(t, err)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "/images/placeholder.jpg", resp.Order.ProductImage)
}

func TestUserOrders(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{"orders":[{"order_id":"o1","product_amount":50,"product_name":"Shoe","product_image":"/images/shoe.jpg","created_date":"2024-01-01","product_mrp":80},{"order_id":"o2","product_amount":60,"product_name":"Cap","product_image":"http://evil.example.com/cap.jpg","created_date":"2024-01-02","product_mrp":90}]}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	orders, err := c.UserOrders(context.Background(), "tok-1234567890")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "/images/shoe.jpg", orders[0].ProductImage)
	assert.Equal(t, "/images/placeholder.jpg", orders[1].ProductImage)
	assert.True(t, orders[0].ProductAmount.Equal(decimal.NewFromInt(50)))
}

func TestUserOrders_RequiresToken(t *testing.T) {
	srv := newMockAPI(http.StatusOK, `{"orders":[]}`)
	defer srv.Server.Close()
	c := newClient(t, srv)

	_, err := c.UserOrders(context.Background(), "")
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindAuth, appErr.Kind)
	assert.Equal(t, int32(0), atomic.LoadInt32(&srv.Hits))
}
