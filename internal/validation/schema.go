// Package validation は入力フィールドの宣言的な検証とメールアドレスの正規化を提供する。
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule は1フィールドに適用する検証ルール。Tagはvalidatorのタグ構文で記述する。
type Rule struct {
	Field string
	Tag   string
}

// Schema はフィールド検証ルールの集合。
type Schema []Rule

// 各操作の入力スキーマ。
var (
	CreatePlaceSchema = Schema{
		{Field: "title", Tag: "required"},
		{Field: "description", Tag: "min=5"},
		{Field: "address", Tag: "required"},
	}
	UpdatePlaceSchema = Schema{
		{Field: "title", Tag: "required"},
		{Field: "description", Tag: "min=5"},
	}
	SignupSchema = Schema{
		{Field: "name", Tag: "required"},
		{Field: "email", Tag: "required,email"},
		{Field: "password", Tag: "min=6"},
	}
)

// Error は検証に失敗したフィールドの一覧を表す。
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// validate はgoroutineセーフなため、パッケージで1つを共有する。
var validate = validator.New()

// Validate はvaluesをスキーマで検証する。valuesに存在しないフィールドは空文字列として扱う。
// すべてのルールを評価し、失敗したフィールドをまとめて返す。
func (s Schema) Validate(values map[string]string) error {
	var failed []string
	for _, rule := range s {
		if err := validate.Var(values[rule.Field], rule.Tag); err != nil {
			failed = append(failed, rule.Field)
		}
	}
	if len(failed) > 0 {
		return &Error{Fields: failed}
	}
	return nil
}
