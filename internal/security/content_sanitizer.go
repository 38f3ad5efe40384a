// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はクライアントから送信されたレシピのテキスト
// （タイトル・材料・手順）をサニタイズし、保存型XSSからフロントエンドを保護する。
// レシピのフィールドはすべてプレーンテキストであり、HTMLタグを一切許可しない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はテキストフィールドのサニタイズ機能のインターフェースを定義する。
// レシピの保存前に使用される。
type ContentSanitizerService interface {
	// SanitizeText は入力からすべてのHTMLタグを除去し、
	// 前後の空白を取り除いたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicy（許可タグなし）を使用し、タグはすべて除去される。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力からすべてのHTMLタグを除去したプレーンテキストを返す。
// bluemondayはテキストをHTMLエスケープして返すため、
// "1 < 2" のような通常のテキストが壊れないようアンエスケープして格納する。
func (s *contentSanitizer) SanitizeText(raw string) string {
	sanitized := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(sanitized))
}
