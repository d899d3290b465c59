// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は外部の生成APIから返された豆知識テキストを
// サニタイズし、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// 豆知識はプレーンテキストとして扱うため、bluemondayのStrictPolicyで
// すべてのHTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は生成テキストのサニタイズ機能のインターフェースを定義する。
// 豆知識の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は生成テキストからすべてのHTMLタグを除去し、
	// 前後の空白をトリムしたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyを使用し、いかなるタグも許可しない。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は生成テキストをサニタイズしてプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
