package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pudaweed/clubman/internal/model"
)

// PostgresPaymentRepo はPostgreSQLを使用した支払いリポジトリ。
type PostgresPaymentRepo struct {
	db *sql.DB
}

// NewPostgresPaymentRepo はPostgresPaymentRepoを生成する。
func NewPostgresPaymentRepo(db *sql.DB) *PostgresPaymentRepo {
	return &PostgresPaymentRepo{db: db}
}

const paymentColumns = `id, player_id, player_name, amount, type, method, status, description, date, created_at, updated_at`

// scanPayment は1行をPaymentにデコードし、スキーマ検証を行う。
// 列挙値と金額の検証に通らない行はMalformedRecordエラーとして返す。
func scanPayment(row interface{ Scan(...any) error }) (*model.Payment, error) {
	p := &model.Payment{}
	err := row.Scan(&p.ID, &p.PlayerID, &p.PlayerName, &p.Amount, &p.Type, &p.Method,
		&p.Status, &p.Description, &p.Date, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if !p.Type.Valid() {
		return nil, model.NewMalformedRecordError("payments", p.ID, "type")
	}
	if !p.Method.Valid() {
		return nil, model.NewMalformedRecordError("payments", p.ID, "method")
	}
	if !p.Status.Valid() {
		return nil, model.NewMalformedRecordError("payments", p.ID, "status")
	}
	if p.Amount < 0 {
		return nil, model.NewMalformedRecordError("payments", p.ID, "amount")
	}
	return p, nil
}

// FindByID は指定IDの支払いを取得する。見つからない場合はnilを返す。
func (r *PostgresPaymentRepo) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`,
		id,
	)

	payment, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}

	return payment, nil
}

// Create は支払いを作成する。
func (r *PostgresPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, player_id, player_name, amount, type, method, status, description, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		payment.ID, payment.PlayerID, payment.PlayerName, payment.Amount,
		payment.Type, payment.Method, payment.Status, payment.Description,
		payment.Date, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// Update は支払いの全フィールドを上書き更新する。
func (r *PostgresPaymentRepo) Update(ctx context.Context, payment *model.Payment) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET player_id = $1, player_name = $2, amount = $3, type = $4, method = $5,
		     status = $6, description = $7, date = $8, updated_at = $9
		 WHERE id = $10`,
		payment.PlayerID, payment.PlayerName, payment.Amount, payment.Type,
		payment.Method, payment.Status, payment.Description, payment.Date,
		payment.UpdatedAt, payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewPaymentNotFoundError(payment.ID)
	}
	return nil
}

// UpdateStatus は支払いの状態のみを更新する。
func (r *PostgresPaymentRepo) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewPaymentNotFoundError(id)
	}
	return nil
}

// ListByPlayer は指定選手の全支払いを日付降順で返す。
func (r *PostgresPaymentRepo) ListByPlayer(ctx context.Context, playerID string) ([]model.Payment, error) {
	return r.List(ctx, ListPaymentsOptions{PlayerID: playerID})
}

// List は条件に合致する支払いを日付降順で返す。
// ゼロ値の条件は適用されない。
func (r *PostgresPaymentRepo) List(ctx context.Context, opts ListPaymentsOptions) ([]model.Payment, error) {
	var (
		conditions []string
		args       []any
	)

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.PlayerID != "" {
		conditions = append(conditions, "player_id = "+addArg(opts.PlayerID))
	}
	if opts.Search != "" {
		ph := addArg("%" + opts.Search + "%")
		conditions = append(conditions, "(player_name ILIKE "+ph+" OR description ILIKE "+ph+")")
	}
	if !opts.Date.IsZero() {
		conditions = append(conditions, "date::date = "+addArg(opts.Date)+"::date")
	}
	if !opts.Cursor.IsZero() {
		conditions = append(conditions, "date < "+addArg(opts.Cursor))
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC"
	if opts.Limit > 0 {
		query += " LIMIT " + addArg(opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment rows: %w", err)
	}

	return payments, nil
}

// compile-time interface check
var _ PaymentRepository = (*PostgresPaymentRepo)(nil)
