// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pudaweed/clubman/internal/guard"
	"github.com/pudaweed/clubman/internal/model"
)

// SessionCookieName はセッションIDを保持するHTTP Only Cookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// UserFinder はユーザーの検索に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// ユーザーを解決してリクエストコンテキストに注入するミドルウェアを返す。
// 未認証リクエストには401とログインパスへのリダイレクト指示を返す。
func NewSessionMiddleware(sessionFinder SessionFinder, userFinder UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := resolveUser(r, sessionFinder, userFinder)

			decision := guard.Authenticated(guard.Session{User: user})
			if decision.Kind != guard.Allow {
				WriteRedirectError(w, http.StatusUnauthorized, model.NewUnauthorizedError(), decision.Target)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewAdminMiddleware は管理者ロールを要求するミドルウェアを返す。
// セッションミドルウェアの後に配置する。
// 管理者でないユーザーには403とダッシュボードへのリダイレクト指示を返す。
func NewAdminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil {
				WriteRedirectError(w, http.StatusUnauthorized, model.NewUnauthorizedError(), guard.LoginPath)
				return
			}

			decision := guard.Admin(guard.Session{User: user})
			if decision.Kind != guard.Allow {
				WriteRedirectError(w, http.StatusForbidden, model.NewForbiddenError(), decision.Target)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveUser はCookieのセッションIDから認証済みユーザーを解決する。
// セッションが無効・期限切れの場合やユーザーが存在しない場合はnilを返す。
func resolveUser(r *http.Request, sessionFinder SessionFinder, userFinder UserFinder) *model.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to find session", slog.String("error", err.Error()))
		return nil
	}
	if session == nil {
		return nil
	}

	user, err := userFinder.FindByID(r.Context(), session.UserID)
	if err != nil {
		slog.Error("failed to find session user",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return user
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
