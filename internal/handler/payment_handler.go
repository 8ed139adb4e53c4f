package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pudaweed/clubman/internal/middleware"
	"github.com/pudaweed/clubman/internal/model"
	"github.com/pudaweed/clubman/internal/payment"
	"github.com/pudaweed/clubman/internal/stats"
)

// dateParamLayout は日付クエリパラメータの書式。
const dateParamLayout = "2006-01-02"

// PaymentServiceInterface は支払いハンドラーが必要とするサービスインターフェース。
type PaymentServiceInterface interface {
	// Create は支払いを登録する。
	Create(ctx context.Context, input payment.CreateInput) (*model.Payment, error)
	// Update は既存の支払いに指定フィールドをマージして更新する。
	Update(ctx context.Context, id string, input payment.UpdateInput) (*model.Payment, error)
	// UpdateStatus は支払いの状態のみを更新する。
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error
	// HistoryFor は指定選手の支払い履歴とサマリーを返す。
	HistoryFor(ctx context.Context, playerID string, filter payment.HistoryFilter, cursor time.Time) (*payment.History, error)
	// DashboardFor は指定選手のダッシュボードデータを返す。
	DashboardFor(ctx context.Context, playerID string) (*payment.Dashboard, error)
	// AdminList は管理者向けの支払い一覧を日付降順で返す。
	AdminList(ctx context.Context, opts payment.AdminListOptions) ([]model.Payment, error)
}

// PaymentHandler は支払い管理のHTTPハンドラー。
type PaymentHandler struct {
	service PaymentServiceInterface
}

// NewPaymentHandler はPaymentHandlerを生成する。
func NewPaymentHandler(service PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// --- レスポンス型 ---

// paymentResponse は支払いのレスポンス。
type paymentResponse struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// dashboardResponse はダッシュボードビューのレスポンス。
type dashboardResponse struct {
	Stats          stats.Stats       `json:"stats"`
	RecentPayments []paymentResponse `json:"recent_payments"`
	MonthlyDue     int64             `json:"monthly_due"`
	NextDueDate    time.Time         `json:"next_due_date"`
}

// historyResponse は支払い履歴ビューのレスポンス。
type historyResponse struct {
	Payments   []paymentResponse `json:"payments"`
	Stats      stats.Stats       `json:"stats"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// paymentListResponse は管理者向け支払い一覧のレスポンス。
type paymentListResponse struct {
	Payments   []paymentResponse `json:"payments"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// createPaymentRequest は支払い登録リクエストのボディ。
type createPaymentRequest struct {
	PlayerID    string `json:"player_id"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// updatePaymentRequest は支払い更新リクエストのボディ。
// nilのフィールドは変更しない部分更新。
type updatePaymentRequest struct {
	PlayerID    *string    `json:"player_id,omitempty"`
	Amount      *int64     `json:"amount,omitempty"`
	Type        *string    `json:"type,omitempty"`
	Method      *string    `json:"method,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// updateStatusRequest は支払い状態更新リクエストのボディ。
type updateStatusRequest struct {
	Status string `json:"status"`
}

func toPaymentResponse(p model.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		PlayerID:    p.PlayerID,
		PlayerName:  p.PlayerName,
		Amount:      p.Amount,
		Type:        string(p.Type),
		Method:      string(p.Method),
		Status:      string(p.Status),
		Description: p.Description,
		Date:        p.Date,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPaymentResponses(payments []model.Payment) []paymentResponse {
	responses := make([]paymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = toPaymentResponse(p)
	}
	return responses
}

// Dashboard はログイン中の選手のダッシュボードデータを返す。
// GET /api/dashboard
func (h *PaymentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	d, err := h.service.DashboardFor(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, dashboardResponse{
		Stats:          d.Stats,
		RecentPayments: toPaymentResponses(d.RecentPayments),
		MonthlyDue:     d.MonthlyDue,
		NextDueDate:    d.NextDueDate,
	})
}

// History はログイン中の選手の支払い履歴を返す。
// GET /api/payments/history?type=all|monthly|tournament&cursor=xxx
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var cursor time.Time
	if cursorStr := r.URL.Query().Get("cursor"); cursorStr != "" {
		cursor, err = time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidFilterError(cursorStr))
			return
		}
	}

	filter := payment.HistoryFilter(r.URL.Query().Get("type"))
	history, err := h.service.HistoryFor(r.Context(), user.ID, filter, cursor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := historyResponse{
		Payments: toPaymentResponses(history.Payments),
		Stats:    history.Stats,
	}
	if !history.NextCursor.IsZero() {
		resp.NextCursor = history.NextCursor.Format(time.RFC3339Nano)
	}
	writeJSON(w, resp)
}

// List は管理者向けの支払い一覧を返す。
// GET /api/payments?player_id=xxx&q=ana&date=2025-08-15&cursor=xxx
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := payment.AdminListOptions{
		PlayerID: r.URL.Query().Get("player_id"),
		Search:   r.URL.Query().Get("q"),
	}

	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := time.Parse(dateParamLayout, dateStr)
		if err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidFilterError(dateStr))
			return
		}
		opts.Date = date
	}

	if cursorStr := r.URL.Query().Get("cursor"); cursorStr != "" {
		cursor, err := time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidFilterError(cursorStr))
			return
		}
		opts.Cursor = cursor
	}

	payments, err := h.service.AdminList(r.Context(), opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := paymentListResponse{Payments: toPaymentResponses(payments)}
	if len(payments) > 0 {
		resp.NextCursor = payments[len(payments)-1].Date.Format(time.RFC3339Nano)
	}
	writeJSON(w, resp)
}

// Create は支払いを登録する。
// POST /api/payments
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), payment.CreateInput{
		PlayerID:    req.PlayerID,
		Amount:      req.Amount,
		Type:        model.PaymentType(req.Type),
		Method:      model.PaymentMethod(req.Method),
		Status:      model.PaymentStatus(req.Status),
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPaymentResponse(*created))
}

// Update は支払いを部分更新する。
// PATCH /api/payments/{id}
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := payment.UpdateInput{
		PlayerID:    req.PlayerID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
	}
	if req.Type != nil {
		t := model.PaymentType(*req.Type)
		input.Type = &t
	}
	if req.Method != nil {
		m := model.PaymentMethod(*req.Method)
		input.Method = &m
	}
	if req.Status != nil {
		s := model.PaymentStatus(*req.Status)
		input.Status = &s
	}

	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, toPaymentResponse(*updated))
}

// UpdateStatus は支払いの状態のみを更新する。
// PUT /api/payments/{id}/status
func (h *PaymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, model.PaymentStatus(req.Status)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
