// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// 有効期限を過ぎたセッション行を定期バッチで削除し、
// sessionsテーブルの肥大化を防ぐ。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// defaultSweepInterval はデフォルトの掃除間隔。
const defaultSweepInterval = time.Hour

// ExpiredSessionDeleter は期限切れセッションの削除に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionSweeper は期限切れセッションの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type SessionSweeper struct {
	sessions ExpiredSessionDeleter
	logger   *slog.Logger
	Interval time.Duration // 掃除間隔（デフォルト: 1時間）
}

// NewSessionSweeper は新しいSessionSweeperを生成する。
// デフォルトの掃除間隔は1時間。
func NewSessionSweeper(sessions ExpiredSessionDeleter, logger *slog.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		logger:   logger,
		Interval: defaultSweepInterval,
	}
}

// Run は期限切れセッションを1回削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (s *SessionSweeper) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	duration := time.Since(start)
	s.logger.Info("セッション掃除ジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start は掃除ジョブをIntervalごとに繰り返し実行する。
// 起動直後に1回実行し、ctxがキャンセルされるまでブロックする。
// 1回の失敗ではループを止めず、次の周期で再試行する。
func (s *SessionSweeper) Start(ctx context.Context) {
	if err := s.Run(ctx); err != nil {
		s.logger.Warn("initial session sweep failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				s.logger.Warn("session sweep failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		}
	}
}
