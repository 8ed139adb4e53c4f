// Package payment は支払いの登録・更新と各ビュー向けの取得を提供する。
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pudaweed/clubman/internal/metrics"
	"github.com/pudaweed/clubman/internal/model"
	"github.com/pudaweed/clubman/internal/repository"
	"github.com/pudaweed/clubman/internal/stats"
)

// defaultAdminListLimit は管理者向け支払い一覧の1回の取得件数（デフォルト）。
const defaultAdminListLimit = 50

// recentPaymentsCount はダッシュボードに表示する直近の支払い件数。
const recentPaymentsCount = 5

// historyPageSize は履歴ビューの1ページの件数。
const historyPageSize = 50

// ServiceConfig は支払いサービスの設定。
type ServiceConfig struct {
	// MonthlyDueAmount は月会費の金額。
	MonthlyDueAmount int64
	// DueDay は月会費の支払期日の日（毎月この日が期日）。
	DueDay int
}

// Service は支払いに関するビジネスロジックを提供する。
type Service struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	collector   metrics.MetricsCollector
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		collector:   collector,
		config:      config,
	}
}

// CreateInput は支払い登録の入力。
type CreateInput struct {
	PlayerID    string
	Amount      int64
	Type        model.PaymentType
	Method      model.PaymentMethod
	Status      model.PaymentStatus
	Description string
}

// Create は支払いを登録する。
// PlayerIDは既知の選手（playerまたはboth）に解決できなければならない。
// PlayerNameは登録時点の選手名を非正規化して保存し、日付は現在時刻を割り当てる。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Payment, error) {
	if input.Amount < 0 {
		return nil, model.NewInvalidAmountError()
	}
	if !input.Type.Valid() {
		return nil, model.NewInvalidPaymentTypeError(string(input.Type))
	}
	if !input.Method.Valid() {
		return nil, model.NewInvalidMethodError(string(input.Method))
	}
	if !input.Status.Valid() {
		return nil, model.NewInvalidStatusError(string(input.Status))
	}

	player, err := s.resolvePlayer(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &model.Payment{
		ID:          uuid.New().String(),
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		Amount:      input.Amount,
		Type:        input.Type,
		Method:      input.Method,
		Status:      input.Status,
		Description: input.Description,
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.collector.RecordPaymentCreated(string(payment.Type))
	slog.Info("payment created",
		slog.String("payment_id", payment.ID),
		slog.String("player_id", payment.PlayerID),
		slog.Int64("amount", payment.Amount),
		slog.String("type", string(payment.Type)),
	)

	return payment, nil
}

// UpdateInput は支払い更新の入力。nilのフィールドは変更しない部分更新。
// PlayerIDを指定した場合のみPlayerNameも再解決される。
// Dateは明示的に指定した場合のみ変更される。
type UpdateInput struct {
	PlayerID    *string
	Amount      *int64
	Type        *model.PaymentType
	Method      *model.PaymentMethod
	Status      *model.PaymentStatus
	Description *string
	Date        *time.Time
}

// Update は既存の支払いに指定フィールドをマージして更新する。
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	if payment == nil {
		return nil, model.NewPaymentNotFoundError(id)
	}

	if input.PlayerID != nil {
		player, err := s.resolvePlayer(ctx, *input.PlayerID)
		if err != nil {
			return nil, err
		}
		payment.PlayerID = player.ID
		payment.PlayerName = player.Name
	}
	if input.Amount != nil {
		if *input.Amount < 0 {
			return nil, model.NewInvalidAmountError()
		}
		payment.Amount = *input.Amount
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, model.NewInvalidPaymentTypeError(string(*input.Type))
		}
		payment.Type = *input.Type
	}
	if input.Method != nil {
		if !input.Method.Valid() {
			return nil, model.NewInvalidMethodError(string(*input.Method))
		}
		payment.Method = *input.Method
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, model.NewInvalidStatusError(string(*input.Status))
		}
		payment.Status = *input.Status
	}
	if input.Description != nil {
		payment.Description = *input.Description
	}
	if input.Date != nil {
		payment.Date = *input.Date
	}
	payment.UpdatedAt = time.Now()

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	slog.Info("payment updated", slog.String("payment_id", payment.ID))
	return payment, nil
}

// UpdateStatus は支払いの状態のみを更新する。
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	if !status.Valid() {
		return model.NewInvalidStatusError(string(status))
	}

	if err := s.paymentRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	s.collector.RecordPaymentStatusUpdate(string(status))
	slog.Info("payment status updated",
		slog.String("payment_id", id),
		slog.String("status", string(status)),
	)
	return nil
}

// HistoryFilter は履歴ビューの種別フィルタ。
type HistoryFilter string

const (
	HistoryFilterAll        HistoryFilter = "all"
	HistoryFilterMonthly    HistoryFilter = "monthly"
	HistoryFilterTournament HistoryFilter = "tournament"
)

// History は選手の支払い履歴を返す。
// Statsはフィルタ・ページング前の全支払いに対して計算し、Paymentsにのみ
// フィルタとカーソルを適用する（履歴ビューのサマリーカードは常に全体の合計を表示する）。
// NextCursorは次ページが存在する場合のみ非ゼロ。
type History struct {
	Payments   []model.Payment
	Stats      stats.Stats
	NextCursor time.Time
}

// HistoryFor は指定選手の支払い履歴とサマリーを返す。
// cursorが非ゼロの場合、その日時より古い支払いのみを返す。
func (s *Service) HistoryFor(ctx context.Context, playerID string, filter HistoryFilter, cursor time.Time) (*History, error) {
	if filter == "" {
		filter = HistoryFilterAll
	}
	switch filter {
	case HistoryFilterAll, HistoryFilterMonthly, HistoryFilterTournament:
	default:
		return nil, model.NewInvalidFilterError(string(filter))
	}

	payments, err := s.paymentRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	h := &History{Stats: stats.Aggregate(payments)}

	filtered := make([]model.Payment, 0, len(payments))
	for _, p := range payments {
		if filter != HistoryFilterAll && string(p.Type) != string(filter) {
			continue
		}
		if !cursor.IsZero() && !p.Date.Before(cursor) {
			continue
		}
		filtered = append(filtered, p)
	}

	if len(filtered) > historyPageSize {
		filtered = filtered[:historyPageSize]
		h.NextCursor = filtered[len(filtered)-1].Date
	}
	h.Payments = filtered
	return h, nil
}

// Dashboard はダッシュボードビューのデータ。
type Dashboard struct {
	Stats          stats.Stats
	RecentPayments []model.Payment
	MonthlyDue     int64
	NextDueDate    time.Time
}

// DashboardFor は指定選手のダッシュボードデータを返す。
// 統計は全支払いから計算し、直近の支払いは最大5件を返す。
func (s *Service) DashboardFor(ctx context.Context, playerID string) (*Dashboard, error) {
	payments, err := s.paymentRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	recent := payments
	if len(recent) > recentPaymentsCount {
		recent = recent[:recentPaymentsCount]
	}

	return &Dashboard{
		Stats:          stats.Aggregate(payments),
		RecentPayments: recent,
		MonthlyDue:     s.config.MonthlyDueAmount,
		NextDueDate:    stats.NextDueDate(time.Now(), s.config.DueDay),
	}, nil
}

// AdminListOptions は管理者向け支払い一覧の絞り込み条件。
type AdminListOptions struct {
	PlayerID string
	Search   string
	Date     time.Time
	Cursor   time.Time
	Limit    int
}

// AdminList は管理者向けの支払い一覧を日付降順で返す。
func (s *Service) AdminList(ctx context.Context, opts AdminListOptions) ([]model.Payment, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultAdminListLimit
	}

	payments, err := s.paymentRepo.List(ctx, repository.ListPaymentsOptions{
		PlayerID: opts.PlayerID,
		Search:   opts.Search,
		Date:     opts.Date,
		Cursor:   opts.Cursor,
		Limit:    opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// resolvePlayer はPlayerIDを選手ロールの既知ユーザーに解決する。
func (s *Service) resolvePlayer(ctx context.Context, playerID string) (*model.User, error) {
	if playerID == "" {
		return nil, model.NewPlayerNotFoundError(playerID)
	}
	player, err := s.userRepo.FindByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	if player == nil || !player.Role.IsPlayer() {
		return nil, model.NewPlayerNotFoundError(playerID)
	}
	return player, nil
}
