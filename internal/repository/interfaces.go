// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/pudaweed/clubman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// ユーザーレコードは削除されない。アクセス停止はallowedフラグで表現する。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。初回サインイン時のみ呼ばれる。
	Create(ctx context.Context, user *model.User) error

	// ListPlayers は選手ロール（playerまたはboth）のユーザー一覧を名前順で返す。
	ListPlayers(ctx context.Context) ([]model.User, error)

	// SetAllowed は指定ユーザーのallowedフラグのみを更新する。
	// ユーザーが存在しない場合はエラーを返す。
	SetAllowed(ctx context.Context, id string, allowed bool) error
}

// ListPaymentsOptions は支払い一覧取得の絞り込み条件。
// ゼロ値のフィールドは条件として適用されない。
type ListPaymentsOptions struct {
	// PlayerID を指定すると該当選手の支払いのみを返す。
	PlayerID string
	// Search は選手名または説明に対する部分一致（大文字小文字を区別しない）。
	Search string
	// Date を指定するとその日（UTC基準の日付）の支払いのみを返す。
	Date time.Time
	// Cursor はカーソルベースページネーションの起点。
	// 指定した日時より古い支払いのみを返す。ゼロ値は先頭からの取得。
	Cursor time.Time
	// Limit は取得件数の上限。0以下の場合は制限なし。
	Limit int
}

// PaymentRepository は支払いデータの永続化インターフェース。
// 支払いレコードは削除されない。
type PaymentRepository interface {
	// FindByID は指定IDの支払いを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Payment, error)

	// Create は支払いを作成する。
	Create(ctx context.Context, payment *model.Payment) error

	// Update は支払いの全フィールドを上書き更新する。
	// 部分更新のマージはサービス層で行う。
	Update(ctx context.Context, payment *model.Payment) error

	// UpdateStatus は支払いの状態のみを更新する。
	// 支払いが存在しない場合はエラーを返す。
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error

	// ListByPlayer は指定選手の全支払いを日付降順で返す。
	ListByPlayer(ctx context.Context, playerID string) ([]model.Payment, error)

	// List は条件に合致する支払いを日付降順で返す。
	List(ctx context.Context, opts ListPaymentsOptions) ([]model.Payment, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れの全セッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
