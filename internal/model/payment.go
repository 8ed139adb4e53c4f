// Package model はドメインモデルを定義する。
package model

import "time"

// PaymentType は支払いの種別を表す。
type PaymentType string

const (
	// PaymentTypeMonthly は月会費。
	PaymentTypeMonthly PaymentType = "monthly"
	// PaymentTypeTournament は大会参加費。
	PaymentTypeTournament PaymentType = "tournament"
)

// Valid は支払い種別が定義済みの値かどうかを返す。
func (t PaymentType) Valid() bool {
	return t == PaymentTypeMonthly || t == PaymentTypeTournament
}

// PaymentMethod は支払い方法を表す。
type PaymentMethod string

const (
	// PaymentMethodCash は現金払い。
	PaymentMethodCash PaymentMethod = "cash"
	// PaymentMethodTransfer は銀行振込。
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Valid は支払い方法が定義済みの値かどうかを返す。
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodTransfer
}

// PaymentStatus は支払いの状態を表す。
type PaymentStatus string

const (
	// PaymentStatusPending は未払い。
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPaid は支払い済み。
	PaymentStatusPaid PaymentStatus = "paid"
)

// Valid は支払い状態が定義済みの値かどうかを返す。
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// Payment は会員の支払いレコードを表す。
// Amountは整数単位の通貨（CLP、小数なし）。
// PlayerNameは作成時点のユーザー名の非正規化コピーで、
// その後ユーザー名が変わっても追従しない。
// レコードは管理者のみが作成・更新でき、削除されることはない。
type Payment struct {
	ID          string
	PlayerID    string
	PlayerName  string
	Amount      int64
	Type        PaymentType
	Method      PaymentMethod
	Status      PaymentStatus
	Description string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
