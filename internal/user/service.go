// Package user は選手一覧の取得とアクセス許可の管理を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pudaweed/clubman/internal/model"
	"github.com/pudaweed/clubman/internal/repository"
)

// PlayerFilter は選手一覧の絞り込み条件。
type PlayerFilter string

const (
	PlayerFilterAll      PlayerFilter = "all"
	PlayerFilterActive   PlayerFilter = "active"
	PlayerFilterInactive PlayerFilter = "inactive"
)

// Service は選手管理のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// ListPlayers は選手ロール（playerまたはboth）のユーザーを名前順で返す。
// filterはallowedフラグによる絞り込みで、空文字列はallとして扱う。
func (s *Service) ListPlayers(ctx context.Context, filter PlayerFilter) ([]model.User, error) {
	if filter == "" {
		filter = PlayerFilterAll
	}
	switch filter {
	case PlayerFilterAll, PlayerFilterActive, PlayerFilterInactive:
	default:
		return nil, model.NewInvalidFilterError(string(filter))
	}

	players, err := s.userRepo.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	if filter == PlayerFilterAll {
		return players, nil
	}
	wantAllowed := filter == PlayerFilterActive
	filtered := make([]model.User, 0, len(players))
	for _, p := range players {
		if p.Allowed == wantAllowed {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// SetAllowed は選手のアクセス許可フラグを更新する。
// 既存セッションには影響せず、次回のサインインから効く。
func (s *Service) SetAllowed(ctx context.Context, id string, allowed bool) error {
	if err := s.userRepo.SetAllowed(ctx, id, allowed); err != nil {
		return fmt.Errorf("failed to set allowed: %w", err)
	}

	slog.Info("player access updated",
		slog.String("user_id", id),
		slog.Bool("allowed", allowed),
	)
	return nil
}
