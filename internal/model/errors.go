// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, recipe, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeRecipeNotFound      = "RECIPE_NOT_FOUND"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeDuplicateStepNumber = "DUPLICATE_STEP_NUMBER"
	ErrCodeEmailInUse          = "EMAIL_IN_USE"
	ErrCodeInvalidReference    = "INVALID_REFERENCE"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
)

// NewRecipeNotFoundError はレシピ未検出エラーを生成する。
// 削除済みIDの参照など想定内の結果であり、障害としてログに記録しない。
func NewRecipeNotFoundError(recipeID string) *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNotFound,
		Message:  fmt.Sprintf("指定されたレシピが見つかりません: %s", recipeID),
		Category: "recipe",
		Action:   "レシピIDを確認してください。",
	}
}

// NewForbiddenError は所有者以外による変更操作のエラーを生成する。
// 未検出（404）とは区別して返すこと。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "このレシピを変更する権限がありません。",
		Category: "auth",
		Action:   "自分が作成したレシピのみ変更・削除できます。",
	}
}

// NewDuplicateStepNumberError は手順番号の一意性違反エラーを生成する。
func NewDuplicateStepNumberError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateStepNumber,
		Message:  "手順番号が重複しています。",
		Category: "validation",
		Action:   "手順番号は1つのレシピ内で一意になるよう指定してください。",
	}
}

// NewEmailInUseError はメールアドレスの重複登録エラーを生成する。
func NewEmailInUseError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailInUse,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidReferenceError は外部キー制約違反エラーを生成する。
func NewInvalidReferenceError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidReference,
		Message:  fmt.Sprintf("参照先のレコードが存在しません: %s", field),
		Category: "validation",
		Action:   "指定したIDが有効か確認してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("入力が不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレスとパスワードのどちらが誤っているかは明かさない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
