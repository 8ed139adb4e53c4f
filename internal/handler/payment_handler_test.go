package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pudaweed/clubman/internal/middleware"
	"github.com/pudaweed/clubman/internal/model"
	"github.com/pudaweed/clubman/internal/payment"
	"github.com/pudaweed/clubman/internal/stats"
)

type mockPaymentService struct {
	createFunc       func(ctx context.Context, input payment.CreateInput) (*model.Payment, error)
	updateFunc       func(ctx context.Context, id string, input payment.UpdateInput) (*model.Payment, error)
	updateStatusFunc func(ctx context.Context, id string, status model.PaymentStatus) error
	historyForFunc   func(ctx context.Context, playerID string, filter payment.HistoryFilter, cursor time.Time) (*payment.History, error)
	dashboardForFunc func(ctx context.Context, playerID string) (*payment.Dashboard, error)
	adminListFunc    func(ctx context.Context, opts payment.AdminListOptions) ([]model.Payment, error)
}

func (m *mockPaymentService) Create(ctx context.Context, input payment.CreateInput) (*model.Payment, error) {
	return m.createFunc(ctx, input)
}

func (m *mockPaymentService) Update(ctx context.Context, id string, input payment.UpdateInput) (*model.Payment, error) {
	return m.updateFunc(ctx, id, input)
}

func (m *mockPaymentService) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockPaymentService) HistoryFor(ctx context.Context, playerID string, filter payment.HistoryFilter, cursor time.Time) (*payment.History, error) {
	return m.historyForFunc(ctx, playerID, filter, cursor)
}

func (m *mockPaymentService) DashboardFor(ctx context.Context, playerID string) (*payment.Dashboard, error) {
	return m.dashboardForFunc(ctx, playerID)
}

func (m *mockPaymentService) AdminList(ctx context.Context, opts payment.AdminListOptions) ([]model.Payment, error) {
	return m.adminListFunc(ctx, opts)
}

var _ PaymentServiceInterface = (*mockPaymentService)(nil)

func samplePayment() model.Payment {
	return model.Payment{
		ID:         "payment-1",
		PlayerID:   "google-uid-1",
		PlayerName: "Ana",
		Amount:     15000,
		Type:       model.PaymentTypeMonthly,
		Method:     model.PaymentMethodCash,
		Status:     model.PaymentStatusPaid,
		Date:       time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

func withUser(req *http.Request, u *model.User) *http.Request {
	return req.WithContext(middleware.ContextWithUser(req.Context(), u))
}

func TestPaymentHandler_Dashboard(t *testing.T) {
	service := &mockPaymentService{
		dashboardForFunc: func(ctx context.Context, playerID string) (*payment.Dashboard, error) {
			if playerID != "google-uid-1" {
				t.Errorf("expected player from session, got %s", playerID)
			}
			return &payment.Dashboard{
				Stats:          stats.Stats{TotalPaid: 15000, PendingTotal: 5000, MonthlyTotal: 15000},
				RecentPayments: []model.Payment{samplePayment()},
				MonthlyDue:     15000,
				NextDueDate:    time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	h := NewPaymentHandler(service)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil),
		&model.User{ID: "google-uid-1", Role: model.RolePlayer})
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body dashboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Stats.TotalPaid != 15000 || body.Stats.PendingTotal != 5000 {
		t.Errorf("unexpected stats: %+v", body.Stats)
	}
	if len(body.RecentPayments) != 1 {
		t.Errorf("expected 1 recent payment, got %d", len(body.RecentPayments))
	}
	if body.MonthlyDue != 15000 {
		t.Errorf("expected monthly due 15000, got %d", body.MonthlyDue)
	}
}

func TestPaymentHandler_History_PassesFilter(t *testing.T) {
	var gotFilter payment.HistoryFilter
	service := &mockPaymentService{
		historyForFunc: func(ctx context.Context, playerID string, filter payment.HistoryFilter, cursor time.Time) (*payment.History, error) {
			gotFilter = filter
			if !cursor.IsZero() {
				t.Errorf("expected zero cursor, got %v", cursor)
			}
			return &payment.History{Payments: []model.Payment{samplePayment()}}, nil
		},
	}
	h := NewPaymentHandler(service)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/payments/history?type=monthly", nil),
		&model.User{ID: "google-uid-1", Role: model.RolePlayer})
	rec := httptest.NewRecorder()
	h.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotFilter != payment.HistoryFilterMonthly {
		t.Errorf("expected monthly filter, got %s", gotFilter)
	}
}

func TestPaymentHandler_History_InvalidFilter(t *testing.T) {
	service := &mockPaymentService{
		historyForFunc: func(ctx context.Context, playerID string, filter payment.HistoryFilter, cursor time.Time) (*payment.History, error) {
			return nil, model.NewInvalidFilterError(string(filter))
		},
	}
	h := NewPaymentHandler(service)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/payments/history?type=weekly", nil),
		&model.User{ID: "google-uid-1", Role: model.RolePlayer})
	rec := httptest.NewRecorder()
	h.History(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPaymentHandler_History_ParsesCursor(t *testing.T) {
	want := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	var gotCursor time.Time
	service := &mockPaymentService{
		historyForFunc: func(ctx context.Context, playerID string, filter payment.HistoryFilter, cursor time.Time) (*payment.History, error) {
			gotCursor = cursor
			return &payment.History{NextCursor: want.Add(-24 * time.Hour)}, nil
		},
	}
	h := NewPaymentHandler(service)

	url := "/api/payments/history?cursor=" + want.Format(time.RFC3339Nano)
	req := withUser(httptest.NewRequest(http.MethodGet, url, nil),
		&model.User{ID: "google-uid-1", Role: model.RolePlayer})
	rec := httptest.NewRecorder()
	h.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !gotCursor.Equal(want) {
		t.Errorf("expected cursor %v, got %v", want, gotCursor)
	}

	var body historyResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.NextCursor == "" {
		t.Error("expected next cursor in response")
	}
}

func TestPaymentHandler_History_InvalidCursor(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/payments/history?cursor=not-a-time", nil),
		&model.User{ID: "google-uid-1", Role: model.RolePlayer})
	rec := httptest.NewRecorder()
	h.History(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPaymentHandler_List_ParsesFilters(t *testing.T) {
	var gotOpts payment.AdminListOptions
	service := &mockPaymentService{
		adminListFunc: func(ctx context.Context, opts payment.AdminListOptions) ([]model.Payment, error) {
			gotOpts = opts
			return []model.Payment{samplePayment()}, nil
		},
	}
	h := NewPaymentHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/payments?player_id=google-uid-1&q=ana&date=2025-08-15", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotOpts.PlayerID != "google-uid-1" || gotOpts.Search != "ana" {
		t.Errorf("unexpected opts: %+v", gotOpts)
	}
	if gotOpts.Date.Format("2006-01-02") != "2025-08-15" {
		t.Errorf("expected parsed date, got %v", gotOpts.Date)
	}

	var body paymentListResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.NextCursor == "" {
		t.Error("expected next cursor for non-empty page")
	}
}

func TestPaymentHandler_List_InvalidDate(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/payments?date=15-08-2025", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPaymentHandler_Create(t *testing.T) {
	var gotInput payment.CreateInput
	service := &mockPaymentService{
		createFunc: func(ctx context.Context, input payment.CreateInput) (*model.Payment, error) {
			gotInput = input
			p := samplePayment()
			return &p, nil
		},
	}
	h := NewPaymentHandler(service)

	body, _ := json.Marshal(createPaymentRequest{
		PlayerID: "google-uid-1",
		Amount:   15000,
		Type:     "monthly",
		Method:   "cash",
		Status:   "paid",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotInput.PlayerID != "google-uid-1" || gotInput.Amount != 15000 {
		t.Errorf("unexpected input: %+v", gotInput)
	}
}

func TestPaymentHandler_Create_UnknownPlayer(t *testing.T) {
	service := &mockPaymentService{
		createFunc: func(ctx context.Context, input payment.CreateInput) (*model.Payment, error) {
			return nil, model.NewPlayerNotFoundError(input.PlayerID)
		},
	}
	h := NewPaymentHandler(service)

	body, _ := json.Marshal(createPaymentRequest{PlayerID: "unknown", Amount: 1000, Type: "monthly", Method: "cash", Status: "paid"})
	req := httptest.NewRequest(http.MethodPost, "/api/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func patchRequest(t *testing.T, id string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPatch, "/api/payments/"+id, bytes.NewReader(b))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPaymentHandler_Update(t *testing.T) {
	var gotID string
	var gotInput payment.UpdateInput
	service := &mockPaymentService{
		updateFunc: func(ctx context.Context, id string, input payment.UpdateInput) (*model.Payment, error) {
			gotID = id
			gotInput = input
			p := samplePayment()
			p.Amount = 16000
			return &p, nil
		},
	}
	h := NewPaymentHandler(service)

	amount := int64(16000)
	rec := httptest.NewRecorder()
	h.Update(rec, patchRequest(t, "payment-1", updatePaymentRequest{Amount: &amount}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "payment-1" {
		t.Errorf("expected payment-1, got %s", gotID)
	}
	if gotInput.Amount == nil || *gotInput.Amount != 16000 {
		t.Errorf("expected amount 16000 in input, got %+v", gotInput.Amount)
	}
	if gotInput.Type != nil || gotInput.Status != nil || gotInput.Date != nil {
		t.Error("expected omitted fields to stay nil")
	}
}

func TestPaymentHandler_UpdateStatus(t *testing.T) {
	var gotID string
	var gotStatus model.PaymentStatus
	service := &mockPaymentService{
		updateStatusFunc: func(ctx context.Context, id string, status model.PaymentStatus) error {
			gotID = id
			gotStatus = status
			return nil
		},
	}
	h := NewPaymentHandler(service)

	b, _ := json.Marshal(updateStatusRequest{Status: "paid"})
	req := httptest.NewRequest(http.MethodPut, "/api/payments/payment-1/status", bytes.NewReader(b))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "payment-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotID != "payment-1" || gotStatus != model.PaymentStatusPaid {
		t.Errorf("unexpected call: %s %s", gotID, gotStatus)
	}
}

func TestPaymentHandler_UpdateStatus_NotFound(t *testing.T) {
	service := &mockPaymentService{
		updateStatusFunc: func(ctx context.Context, id string, status model.PaymentStatus) error {
			return model.NewPaymentNotFoundError(id)
		},
	}
	h := NewPaymentHandler(service)

	b, _ := json.Marshal(updateStatusRequest{Status: "paid"})
	req := httptest.NewRequest(http.MethodPut, "/api/payments/missing/status", bytes.NewReader(b))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
