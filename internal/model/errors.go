// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIにそのまま表示する原因カテゴリと対処方法を含む。
// メッセージはプロダクトの表示言語（スペイン語）で保持する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, payment, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAccessDenied       = "ACCESS_DENIED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodePlayerNotFound     = "PLAYER_NOT_FOUND"
	ErrCodePaymentNotFound    = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidAmount      = "INVALID_AMOUNT"
	ErrCodeInvalidPaymentType = "INVALID_PAYMENT_TYPE"
	ErrCodeInvalidMethod      = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidStatus      = "INVALID_PAYMENT_STATUS"
	ErrCodeInvalidFilter      = "INVALID_FILTER"
	ErrCodeMalformedRecord    = "MALFORMED_RECORD"
)

// NewAccessDeniedError は許可リスト外のメールでのサインイン拒否エラーを生成する。
func NewAccessDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodeAccessDenied,
		Message:  "No tienes autorización para acceder al sistema.",
		Category: "auth",
		Action:   "Contacta a un administrador del club para solicitar acceso.",
	}
}

// NewUnauthorizedError は未認証リクエストのエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Debes iniciar sesión para continuar.",
		Category: "auth",
		Action:   "Inicia sesión con tu cuenta de Google.",
	}
}

// NewForbiddenError は管理者権限が必要な操作に対するエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "No tienes permisos de administrador.",
		Category: "auth",
		Action:   "Esta acción está reservada a los administradores del club.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("No se encontró el usuario: %s", userID),
		Category: "auth",
		Action:   "Vuelve a iniciar sesión.",
	}
}

// NewPlayerNotFoundError は支払い登録時に選手が特定できない場合のエラーを生成する。
func NewPlayerNotFoundError(playerID string) *APIError {
	return &APIError{
		Code:     ErrCodePlayerNotFound,
		Message:  fmt.Sprintf("Jugador no encontrado: %s", playerID),
		Category: "validation",
		Action:   "Selecciona un jugador de la lista antes de registrar el pago.",
	}
}

// NewPaymentNotFoundError は支払いが見つからない場合のエラーを生成する。
func NewPaymentNotFoundError(paymentID string) *APIError {
	return &APIError{
		Code:     ErrCodePaymentNotFound,
		Message:  fmt.Sprintf("No se encontró el pago: %s", paymentID),
		Category: "payment",
		Action:   "Verifica el identificador del pago.",
	}
}

// NewInvalidAmountError は金額が不正な場合のエラーを生成する。
func NewInvalidAmountError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAmount,
		Message:  "El monto debe ser un número entero mayor o igual a cero.",
		Category: "validation",
		Action:   "Ingresa el monto en pesos, sin decimales.",
	}
}

// NewInvalidPaymentTypeError は支払い種別が不正な場合のエラーを生成する。
func NewInvalidPaymentTypeError(t string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPaymentType,
		Message:  fmt.Sprintf("Tipo de pago inválido: %s", t),
		Category: "validation",
		Action:   "El tipo debe ser monthly o tournament.",
	}
}

// NewInvalidMethodError は支払い方法が不正な場合のエラーを生成する。
func NewInvalidMethodError(m string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMethod,
		Message:  fmt.Sprintf("Método de pago inválido: %s", m),
		Category: "validation",
		Action:   "El método debe ser cash o transfer.",
	}
}

// NewInvalidStatusError は支払い状態が不正な場合のエラーを生成する。
func NewInvalidStatusError(s string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("Estado de pago inválido: %s", s),
		Category: "validation",
		Action:   "El estado debe ser pending o paid.",
	}
}

// NewInvalidFilterError は無効なフィルタエラーを生成する。
func NewInvalidFilterError(filter string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("Filtro inválido: %s", filter),
		Category: "validation",
		Action:   "Revisa los filtros disponibles para esta vista.",
	}
}

// NewMalformedRecordError はストアから読み出したレコードの形式が不正な場合のエラーを生成する。
// スキーマ検証を通らない値をUI層に流さないため、ストア境界で必ずこのエラーに変換する。
func NewMalformedRecordError(collection, id, field string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedRecord,
		Message:  fmt.Sprintf("Registro corrupto en %s (%s): campo %s inválido.", collection, id, field),
		Category: "system",
		Action:   "Contacta a un administrador del sistema.",
	}
}
