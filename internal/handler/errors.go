package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pudaweed/clubman/internal/middleware"
	"github.com/pudaweed/clubman/internal/model"
)

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAccessDenied:
		return http.StatusForbidden
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodePaymentNotFound:
		return http.StatusNotFound
	case model.ErrCodePlayerNotFound:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidAmount,
		model.ErrCodeInvalidPaymentType,
		model.ErrCodeInvalidMethod,
		model.ErrCodeInvalidStatus,
		model.ErrCodeInvalidFilter:
		return http.StatusBadRequest
	case model.ErrCodeMalformedRecord:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
