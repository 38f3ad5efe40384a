package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/hitoshi/recipeman/internal/model"
)

// 手順番号のユニーク制約違反がDUPLICATE_STEP_NUMBERに変換されることを検証
func TestMapConstraintError_DuplicateStepNumber(t *testing.T) {
	pqErr := &pq.Error{
		Code:       pq.ErrorCode(pqUniqueViolation),
		Constraint: "instructions_recipe_id_step_number_key",
	}

	mapped := mapConstraintError(pqErr)
	if mapped == nil {
		t.Fatal("expected mapped error")
	}

	var apiErr *model.APIError
	if !errors.As(mapped, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", mapped)
	}
	if apiErr.Code != model.ErrCodeDuplicateStepNumber {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateStepNumber)
	}
}

// メールアドレスのユニーク制約違反がEMAIL_IN_USEに変換されることを検証
func TestMapConstraintError_EmailInUse(t *testing.T) {
	pqErr := &pq.Error{
		Code:       pq.ErrorCode(pqUniqueViolation),
		Constraint: "users_email_key",
	}

	var apiErr *model.APIError
	if !errors.As(mapConstraintError(pqErr), &apiErr) {
		t.Fatal("expected *model.APIError")
	}
	if apiErr.Code != model.ErrCodeEmailInUse {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeEmailInUse)
	}
}

// 外部キー制約違反がINVALID_REFERENCEに変換されることを検証
func TestMapConstraintError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		constraint string
	}{
		{"recipes_user_id_fkey"},
		{"ingredients_recipe_id_fkey"},
		{"instructions_recipe_id_fkey"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			pqErr := &pq.Error{
				Code:       pq.ErrorCode(pqForeignKeyViolation),
				Constraint: tt.constraint,
			}

			var apiErr *model.APIError
			if !errors.As(mapConstraintError(pqErr), &apiErr) {
				t.Fatal("expected *model.APIError")
			}
			if apiErr.Code != model.ErrCodeInvalidReference {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidReference)
			}
		})
	}
}

// ラップされたpqエラーも変換されることを検証
func TestMapConstraintError_WrappedError(t *testing.T) {
	pqErr := &pq.Error{
		Code:       pq.ErrorCode(pqUniqueViolation),
		Constraint: "instructions_recipe_id_step_number_key",
	}
	wrapped := fmt.Errorf("failed to insert instruction: %w", pqErr)

	if mapConstraintError(wrapped) == nil {
		t.Error("expected wrapped pq error to be mapped")
	}
}

// 対応外のエラーはnilを返し、呼び出し側で通常のエラーとして扱われることを検証
func TestMapConstraintError_UnrelatedErrors(t *testing.T) {
	if mapped := mapConstraintError(errors.New("connection refused")); mapped != nil {
		t.Errorf("expected nil for non-pq error, got %v", mapped)
	}

	// 接続断などの制約以外のpqエラーも変換しない
	pqErr := &pq.Error{Code: pq.ErrorCode("57P01")} // admin_shutdown
	if mapped := mapConstraintError(pqErr); mapped != nil {
		t.Errorf("expected nil for non-constraint pq error, got %v", mapped)
	}
}
