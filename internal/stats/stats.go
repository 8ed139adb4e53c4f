// Package stats は支払いレコードの集計を提供する。
// ダッシュボード、履歴、管理者の支払い一覧はすべてこのパッケージの
// Aggregateを唯一の集計手段として使う。ビューごとに集計ロジックを
// 複製してはならない。
package stats

import (
	"time"

	"github.com/pudaweed/clubman/internal/model"
)

// Stats は支払いリストから導出されるサマリー合計。
// 金額はすべて整数単位の通貨（CLP）。
type Stats struct {
	// TotalPaid は支払い済みレコードの合計金額。
	TotalPaid int64 `json:"total_paid"`
	// PendingTotal は未払いレコードの合計金額。
	PendingTotal int64 `json:"pending_total"`
	// MonthlyTotal は支払い済みの月会費の合計金額。
	MonthlyTotal int64 `json:"monthly_total"`
	// TournamentTotal は支払い済みの大会参加費の合計金額。
	TournamentTotal int64 `json:"tournament_total"`
}

// Aggregate は支払いリストからStatsを計算する純粋関数。
// 入力の順序に依存せず、空リストはすべてゼロのStatsを返す。
// 入力を変更せず、副作用を持たない。
func Aggregate(payments []model.Payment) Stats {
	var s Stats
	for _, p := range payments {
		switch p.Status {
		case model.PaymentStatusPaid:
			s.TotalPaid += p.Amount
			switch p.Type {
			case model.PaymentTypeMonthly:
				s.MonthlyTotal += p.Amount
			case model.PaymentTypeTournament:
				s.TournamentTotal += p.Amount
			}
		case model.PaymentStatusPending:
			s.PendingTotal += p.Amount
		}
	}
	return s
}

// NextDueDate は次の月会費の支払期日を返す。
// 期日は翌月のdueDay日（時刻はゼロ値、nowと同じタイムゾーン）。
func NextDueDate(now time.Time, dueDay int) time.Time {
	return time.Date(now.Year(), now.Month()+1, dueDay, 0, 0, 0, 0, now.Location())
}
