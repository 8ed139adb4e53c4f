// Package guard はページアクセスを判定する純粋なガード述語を提供する。
// ガードはセッションのみを入力とし、セッションが変わるたびに再評価される。
package guard

import "github.com/pudaweed/clubman/internal/model"

// ログインページとダッシュボードのパス。リダイレクト先として使う。
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Session はガードが参照する認証状態のスナップショット。
// Loadingが真の間は認証状態が未解決であることを示す。
type Session struct {
	User    *model.User
	Loading bool
}

// DecisionKind はガードの判定結果の種別。
type DecisionKind int

const (
	// Wait は認証状態が未解決のため判定を保留することを示す。
	Wait DecisionKind = iota
	// Allow はアクセスを許可することを示す。
	Allow
	// Redirect は指定先へのリダイレクトを示す。
	Redirect
)

// Decision はガードの判定結果。
// KindがRedirectの場合のみTargetが意味を持つ。
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Authenticated は認証済みユーザーのみを通すガード。
// 未解決の間はWaitを返し、未認証ならログインページへリダイレクトする。
func Authenticated(s Session) Decision {
	if s.Loading {
		return Decision{Kind: Wait}
	}
	if s.User == nil {
		return Decision{Kind: Redirect, Target: LoginPath}
	}
	return Decision{Kind: Allow}
}

// Admin は管理者ロール（adminまたはboth）のみを通すガード。
// 認証済みだが管理者でないユーザーはログインページではなく
// ダッシュボードへ横方向にリダイレクトする（ログアウトはさせない）。
func Admin(s Session) Decision {
	if s.Loading {
		return Decision{Kind: Wait}
	}
	if s.User == nil || !s.User.Role.IsAdmin() {
		return Decision{Kind: Redirect, Target: DashboardPath}
	}
	return Decision{Kind: Allow}
}
