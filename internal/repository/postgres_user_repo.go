package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pudaweed/clubman/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// scanUser は1行をUserにデコードし、スキーマ検証を行う。
// 検証に通らない行はMalformedRecordエラーとして呼び出し側に返し、
// 不正な値をそのまま上位層に流さない。
func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Allowed,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if !user.Role.Valid() {
		return nil, model.NewMalformedRecordError("users", user.ID, "role")
	}
	if user.Email == "" {
		return nil, model.NewMalformedRecordError("users", user.ID, "email")
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, allowed, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成する。初回サインイン時のみ呼ばれる。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, allowed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Name, user.Role, user.Allowed,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// ListPlayers は選手ロール（playerまたはboth）のユーザー一覧を名前順で返す。
func (r *PostgresUserRepo) ListPlayers(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, name, role, allowed, created_at, updated_at
		 FROM users WHERE role IN ('player', 'both') ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate player rows: %w", err)
	}

	return users, nil
}

// SetAllowed は指定ユーザーのallowedフラグのみを更新する。
func (r *PostgresUserRepo) SetAllowed(ctx context.Context, id string, allowed bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET allowed = $1, updated_at = now() WHERE id = $2`,
		allowed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update user allowed flag: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewUserNotFoundError(id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
