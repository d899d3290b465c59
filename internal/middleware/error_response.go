package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/cinefact/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:    apiErr.Code,
		Message: apiErr.Message,
	})
}

// WriteError はサービス層のエラーをHTTPレスポンスに変換して書き込む。
// *model.APIErrorはコードに応じたステータスで返し、
// それ以外のエラーは詳細を漏らさず500として返す。
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		WriteErrorResponse(w, statusForCode(apiErr.Code), apiErr)
		return
	}
	WriteInternalServerError(w)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}

// statusForCode はエラーコードをHTTPステータスコードに対応付ける。
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeBadRequest, model.ErrCodeValidation, model.ErrCodeNoMovie:
		return http.StatusBadRequest
	case model.ErrCodeFact:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
