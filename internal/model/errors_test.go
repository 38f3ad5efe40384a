package model

import (
	"errors"
	"strings"
	"testing"
)

// APIErrorがerrorインターフェースを満たし、コードとメッセージを含むことを検証
func TestAPIError_ErrorFormat(t *testing.T) {
	err := &APIError{
		Code:     "TEST_CODE",
		Message:  "test message",
		Category: "validation",
		Action:   "do something",
	}

	msg := err.Error()
	if !strings.Contains(msg, "TEST_CODE") {
		t.Errorf("Error() = %q, want it to contain %q", msg, "TEST_CODE")
	}
	if !strings.Contains(msg, "test message") {
		t.Errorf("Error() = %q, want it to contain %q", msg, "test message")
	}
}

// ラップされたAPIErrorがerrors.Asで取り出せることを検証
func TestAPIError_UnwrapsWithErrorsAs(t *testing.T) {
	var apiErr *APIError
	err := error(NewForbiddenError())

	if !errors.As(err, &apiErr) {
		t.Fatal("expected errors.As to match *APIError")
	}
	if apiErr.Code != ErrCodeForbidden {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrCodeForbidden)
	}
}

// 各コンストラクタが期待するコードとカテゴリを設定することを検証
func TestErrorConstructors_Codes(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		code     string
		category string
	}{
		{"recipe not found", NewRecipeNotFoundError("r-1"), ErrCodeRecipeNotFound, "recipe"},
		{"forbidden", NewForbiddenError(), ErrCodeForbidden, "auth"},
		{"duplicate step number", NewDuplicateStepNumberError(), ErrCodeDuplicateStepNumber, "validation"},
		{"email in use", NewEmailInUseError(), ErrCodeEmailInUse, "validation"},
		{"invalid reference", NewInvalidReferenceError("user_id"), ErrCodeInvalidReference, "validation"},
		{"validation", NewValidationError("title required"), ErrCodeInvalidRequest, "validation"},
		{"invalid credentials", NewInvalidCredentialsError(), ErrCodeInvalidCredentials, "auth"},
		{"user not found", NewUserNotFoundError(), ErrCodeUserNotFound, "auth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Category != tt.category {
				t.Errorf("Category = %q, want %q", tt.err.Category, tt.category)
			}
			if tt.err.Action == "" {
				t.Error("expected non-empty Action")
			}
		})
	}
}

// NewRecipeNotFoundErrorがレシピIDをメッセージに含めることを検証
func TestNewRecipeNotFoundError_IncludesID(t *testing.T) {
	err := NewRecipeNotFoundError("abc-123")
	if !strings.Contains(err.Message, "abc-123") {
		t.Errorf("Message = %q, want it to contain %q", err.Message, "abc-123")
	}
}
