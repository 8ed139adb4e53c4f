// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleAdmin は管理者。支払い管理とユーザー管理が可能。
	RoleAdmin Role = "admin"
	// RolePlayer は選手。自分のダッシュボードと支払い履歴のみ閲覧可能。
	RolePlayer Role = "player"
	// RoleBoth は管理者かつ選手。両方の画面にアクセス可能。
	RoleBoth Role = "both"
)

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePlayer, RoleBoth:
		return true
	}
	return false
}

// IsAdmin は管理者権限を持つロールかどうかを返す。
// adminとbothのみが管理者扱いとなる。
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleBoth
}

// IsPlayer は選手として扱われるロールかどうかを返す。
// 支払い対象の選手一覧にはplayerとbothのみが含まれる。
func (r Role) IsPlayer() bool {
	return r == RolePlayer || r == RoleBoth
}

// User はクラブの会員を表す。
// IDは外部IdPが発行したユーザー識別子をそのまま主キーとして使う。
// レコードは初回サインイン時に許可リストを通過した場合のみ作成され、
// 以後削除されることはない。アクセス停止はAllowed=falseで表現する。
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Allowed   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
