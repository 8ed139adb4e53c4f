// Package auth はOAuthサインインフロー、許可リスト照合、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/pudaweed/clubman/internal/metrics"
	"github.com/pudaweed/clubman/internal/model"
	"github.com/pudaweed/clubman/internal/policy"
	"github.com/pudaweed/clubman/internal/repository"
)

// Identity はIdPから取得した検証済みのユーザー識別情報を表す。
type Identity struct {
	// UID はIdPが発行したユーザー識別子。usersの主キーとしてそのまま使う。
	UID         string
	Email       string
	DisplayName string
}

// IdentityProvider は外部IdPのインターフェース。
type IdentityProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードを交換し、検証済みのユーザー識別情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*Identity, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// CallbackResult はサインイン完了時の結果。
// NewUserは今回のサインインでユーザーレコードが新規作成されたことを示し、
// 「ようこそ」と「おかえりなさい」の通知の出し分けに使う。
type CallbackResult struct {
	Session *model.Session
	User    *model.User
	NewUser bool
}

// Service はサインインに関するビジネスロジックを提供する。
// 許可リストの照合、ユーザーの自動プロビジョニング、セッション発行を行う。
type Service struct {
	idp         IdentityProvider
	accessList  *policy.Policy
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	collector   metrics.MetricsCollector
	config      ServiceConfig
}

// NewService はServiceを生成する。
// accessListはイミュータブルな許可リストで、サインインごとに参照される。
func NewService(
	idp IdentityProvider,
	accessList *policy.Policy,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		idp:         idp,
		accessList:  accessList,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		collector:   collector,
		config:      config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.idp.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
//
// メールが許可リストにない場合はセッションを発行せずAccessDeniedを返す
// （ブラウザ側のIdPサインアウト強制に相当する。ユーザーレコードが既に
// 存在していても許可リストの照合が常に先に行われる）。
//
// 許可リストを通過した未登録ユーザーはusersレコードを自動作成する。
// 登録済みユーザーは保存されたrole/allowedをそのまま信頼し、
// 許可リストの再計算結果では上書きしない。
func (s *Service) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	// 1. 認可コードを検証済みの識別情報に交換
	identity, err := s.idp.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. 許可リストの照合。リスト外は即拒否。
	role, allowed := s.accessList.ResolveRole(identity.Email)
	if !allowed {
		s.collector.RecordLoginDenied()
		slog.Warn("sign-in denied by allow-list",
			slog.String("email", identity.Email),
		)
		return nil, model.NewAccessDeniedError()
	}

	// 3. IdPのuidでユーザーを検索
	user, err := s.userRepo.FindByID(ctx, identity.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	newUser := false
	if user == nil {
		// 3a. 初回サインイン: ユーザーを自動プロビジョニング
		now := time.Now()
		user = &model.User{
			ID:        identity.UID,
			Email:     identity.Email,
			Name:      identity.DisplayName,
			Role:      role,
			Allowed:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		newUser = true
		slog.Info("new user provisioned",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
			slog.String("role", string(user.Role)),
		)
	} else {
		// 3b. 既存ユーザー: allowedを落とされたユーザーはここで遮断する
		if !user.Allowed {
			s.collector.RecordLoginDenied()
			slog.Warn("sign-in denied by allowed flag",
				slog.String("user_id", user.ID),
			)
			return nil, model.NewAccessDeniedError()
		}
		// 保存されたロールをそのまま使う
		slog.Info("existing user signed in",
			slog.String("user_id", user.ID),
			slog.String("role", string(user.Role)),
		)
	}

	// 4. セッションを発行
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.collector.RecordLoginSuccess()

	return &CallbackResult{
		Session: session,
		User:    user,
		NewUser: newUser,
	}, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user signed out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// allowedフラグはここでは再検証しない。フラグを落とされたユーザーも
// 既存セッションが切れるまでは有効なまま残る（次回サインイン時に
// 許可リストで遮断される）。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
