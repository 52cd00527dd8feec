package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/craftconnect/marketplace/internal/app/handlers"
	"github.com/craftconnect/marketplace/internal/domain/models"
	"github.com/craftconnect/marketplace/internal/jwt-new/jwtmiddleware"
	"github.com/craftconnect/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (string, error) {
	return f.token, f.err
}

type fakeSettlementService struct {
	result  *service.PurchaseResult
	err     error
	lastReq service.PurchaseRequest
}

func (f *fakeSettlementService) Purchase(ctx context.Context, req service.PurchaseRequest) (*service.PurchaseResult, error) {
	f.lastReq = req
	return f.result, f.err
}

type fakeOrderService struct {
	order *models.Order
	list  []*models.Order
	err   error
}

func (f *fakeOrderService) OrdersByBuyer(ctx context.Context, buyerID int64) ([]*models.Order, error) {
	return f.list, f.err
}

func (f *fakeOrderService) OrdersByArtisan(ctx context.Context, artisanID int64) ([]*models.Order, error) {
	return f.list, f.err
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus, requesterID int64) (*models.Order, error) {
	return f.order, f.err
}

type fakeWalletService struct {
	resp *service.WalletResponse
	err  error
}

func (f *fakeWalletService) GetWallet(ctx context.Context, userID int64) (*service.WalletResponse, error) {
	return f.resp, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// withUser кладёт userID в контекст запроса так же, как это делает JWT middleware.
func withUser(req *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(req.Context(), jwtmiddleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestAuthHandler_Success(t *testing.T) {
	// Фиктивный сервис возвращает корректный токен.
	fakeSvc := &fakeAuthService{token: "test-token", err: nil}
	handler := handlers.AuthHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "test@example.com", "password": "password123"}`
	req := httptest.NewRequest("POST", "/api/auth", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp handlers.AuthResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "test-token", resp.Token)
}

func TestAuthHandler_InvalidBody(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{})

	req := httptest.NewRequest("POST", "/api/auth", bytes.NewBufferString(`{"username": "not-an-email"`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateOrderHandler_Success(t *testing.T) {
	fakeSvc := &fakeSettlementService{
		result: &service.PurchaseResult{
			Order: &models.Order{
				ID: 5, ProductID: 1, BuyerID: 20, ArtisanID: 10,
				Quantity: 2, TotalPrice: 1000,
				Status: models.OrderPending, PaymentStatus: models.PaymentCompleted,
			},
			LedgerRecorded: true,
		},
	}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	body := `{"productId": 1, "quantity": 2, "shippingAddress": "12 Pottery Lane"}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(body))
	req.Header.Set("Idempotency-Key", "retry-abc")
	req = withUser(req, 20)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp handlers.OrderResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(1000), resp.Order.TotalPrice)
	assert.True(t, resp.LedgerRecorded)

	// Личность покупателя и ключ идемпотентности дошли до движка.
	assert.Equal(t, int64(20), fakeSvc.lastReq.BuyerID)
	assert.Equal(t, "retry-abc", fakeSvc.lastReq.IdempotencyKey)
}

func TestCreateOrderHandler_Replay(t *testing.T) {
	fakeSvc := &fakeSettlementService{
		result: &service.PurchaseResult{
			Order:          &models.Order{ID: 5, TotalPrice: 1000},
			LedgerRecorded: true,
			Replayed:       true,
		},
	}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	body := `{"productId": 1, "quantity": 2, "shippingAddress": "12 Pottery Lane"}`
	req := withUser(httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(body)), 20)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, "replayed purchase is not a new resource")
}

func TestCreateOrderHandler_InsufficientStock(t *testing.T) {
	fakeSvc := &fakeSettlementService{err: fmt.Errorf("purchase: %w", service.ErrInsufficientStock)}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	body := `{"productId": 1, "quantity": 5, "shippingAddress": "12 Pottery Lane"}`
	req := withUser(httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(body)), 20)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateOrderHandler_ProductNotFound(t *testing.T) {
	fakeSvc := &fakeSettlementService{err: fmt.Errorf("purchase: %w", service.ErrProductNotFound)}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	body := `{"productId": 99, "quantity": 1, "shippingAddress": "12 Pottery Lane"}`
	req := withUser(httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(body)), 20)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateOrderHandler_ValidationError(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeSettlementService{})

	// Нулевое количество отклоняется валидатором до вызова движка.
	body := `{"productId": 1, "quantity": 0, "shippingAddress": "12 Pottery Lane"}`
	req := withUser(httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(body)), 20)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateOrderHandler_Unauthorized(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeSettlementService{})

	body := `{"productId": 1, "quantity": 1, "shippingAddress": "12 Pottery Lane"}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// newStatusUpdateRequest собирает PUT-запрос с параметром id в chi-контексте.
func newStatusUpdateRequest(orderID string, body string, userID int64) *http.Request {
	req := httptest.NewRequest("PUT", "/api/orders/"+orderID, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", orderID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return withUser(req, userID)
}

func TestUpdateOrderStatusHandler_Success(t *testing.T) {
	fakeSvc := &fakeOrderService{
		order: &models.Order{ID: 5, ArtisanID: 10, Status: models.OrderConfirmed},
	}
	handler := handlers.UpdateOrderStatusHandler(testLogger(), fakeSvc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newStatusUpdateRequest("5", `{"status": "confirmed"}`, 10))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp models.Order
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, models.OrderConfirmed, resp.Status)
}

func TestUpdateOrderStatusHandler_NotArtisan(t *testing.T) {
	fakeSvc := &fakeOrderService{err: fmt.Errorf("update: %w", service.ErrNotAuthorized)}
	handler := handlers.UpdateOrderStatusHandler(testLogger(), fakeSvc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newStatusUpdateRequest("5", `{"status": "confirmed"}`, 20))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUpdateOrderStatusHandler_OrderNotFound(t *testing.T) {
	fakeSvc := &fakeOrderService{err: fmt.Errorf("update: %w", service.ErrOrderNotFound)}
	handler := handlers.UpdateOrderStatusHandler(testLogger(), fakeSvc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newStatusUpdateRequest("404", `{"status": "confirmed"}`, 10))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateOrderStatusHandler_InvalidTransition(t *testing.T) {
	fakeSvc := &fakeOrderService{err: fmt.Errorf("update: %w", service.ErrInvalidTransition)}
	handler := handlers.UpdateOrderStatusHandler(testLogger(), fakeSvc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newStatusUpdateRequest("5", `{"status": "cancelled"}`, 10))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListOrdersHandler_UnknownRole(t *testing.T) {
	handler := handlers.ListOrdersHandler(testLogger(), &fakeOrderService{})

	req := withUser(httptest.NewRequest("GET", "/api/orders?role=admin", nil), 10)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWalletHandler_Success(t *testing.T) {
	fakeSvc := &fakeWalletService{
		resp: &service.WalletResponse{
			Balance: 1000,
			History: []*models.Transaction{
				{ID: 1, OrderID: 5, FromUserID: 20, ToUserID: 10, Amount: 1000, Type: models.TxTypePurchase, Status: models.TxStatusCompleted},
			},
		},
	}
	handler := handlers.WalletHandler(testLogger(), fakeSvc)

	req := withUser(httptest.NewRequest("GET", "/api/wallet", nil), 10)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp service.WalletResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(1000), resp.Balance)
	assert.Len(t, resp.History, 1)
}

func TestWalletHandler_InternalError(t *testing.T) {
	fakeSvc := &fakeWalletService{err: errors.New("db down")}
	handler := handlers.WalletHandler(testLogger(), fakeSvc)

	req := withUser(httptest.NewRequest("GET", "/api/wallet", nil), 10)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	// Сырая ошибка хранилища наружу не выходит
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "db down")
}
