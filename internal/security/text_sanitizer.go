package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力のテキストフィールドからマークアップを除去する。
type TextSanitizer interface {
	// Clean はHTMLタグをすべて除去したプレーンテキストを返す。
	// 同一入力に対して常に同一出力を返す。
	Clean(s string) string
}

// textSanitizer はbluemondayのStrictPolicyによるTextSanitizerの実装。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean はタグを除去し、StrictPolicyがエスケープした文字を元に戻す。
// レスポンスはJSONで返すため、保存値はエスケープしない。
func (s *textSanitizer) Clean(in string) string {
	if in == "" {
		return ""
	}
	return html.UnescapeString(s.policy.Sanitize(in))
}

var _ TextSanitizer = (*textSanitizer)(nil)
