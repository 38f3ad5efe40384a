package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/recipeman/internal/model"
)

// PostgreSQLのエラーコード
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapConstraintError はPostgreSQLの制約違反をドメインエラーに変換する。
// 対応する制約でない場合はnilを返し、呼び出し側が通常のエラーとして扱う。
// 制約の生のエラーテキストは呼び出し元に漏らさない。
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch string(pqErr.Code) {
	case pqUniqueViolation:
		if strings.Contains(pqErr.Constraint, "instructions") {
			return model.NewDuplicateStepNumberError()
		}
		if strings.Contains(pqErr.Constraint, "users_email") {
			return model.NewEmailInUseError()
		}
	case pqForeignKeyViolation:
		if strings.Contains(pqErr.Constraint, "user_id") {
			return model.NewInvalidReferenceError("user_id")
		}
		if strings.Contains(pqErr.Constraint, "recipe_id") {
			return model.NewInvalidReferenceError("recipe_id")
		}
		return model.NewInvalidReferenceError(pqErr.Constraint)
	}

	return nil
}
