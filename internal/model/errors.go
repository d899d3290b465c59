package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// ワイヤ上は {code, message} の2フィールドのみを公開する。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ（そのままUIに表示可能）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNoMovie         = "NO_MOVIE"
	ErrCodeFact            = "FACT_ERROR"
)

// NewUnauthenticatedError は未認証エラーを生成する。
// 期限切れ・署名不正・Cookie欠落のいずれであっても呼び出し元には同一のエラーを返す。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthenticated,
		Message: "Unauthorized",
	}
}

// NewBadRequestError はリクエスト形式不正エラーを生成する。
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewMovieValidationError はお気に入り映画の検証エラーを生成する。
func NewMovieValidationError() *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: "Favorite movie must be between 2 and 100 characters",
	}
}

// NewNoMovieError はお気に入り映画未設定エラーを生成する。
func NewNoMovieError() *APIError {
	return &APIError{
		Code:    ErrCodeNoMovie,
		Message: "Favorite movie not set",
	}
}

// NewFactError はファクト生成・永続化の内部エラーを生成する。
// 詳細はログにのみ記録し、ユーザーには一般的なメッセージを返す。
func NewFactError() *APIError {
	return &APIError{
		Code:    ErrCodeFact,
		Message: "Failed to generate movie fact",
	}
}
