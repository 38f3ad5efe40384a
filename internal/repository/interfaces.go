// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/recipeman/internal/model"
)

// RecipeRepository はレシピ集約（レシピ・材料・手順）の永続化インターフェース。
// 複数テーブルにまたがる書き込みは1つのトランザクションとして実行され、
// 途中まで適用された状態が外部から観測されることはない。
type RecipeRepository interface {
	// Create はレシピと材料・手順の全件を同一トランザクションで作成する。
	// 成功時は生成されたIDを含む完全なレシピを、入力と同じ並びで返す。
	// 手順番号の重複はDUPLICATE_STEP_NUMBER、所有者の外部キー違反は
	// INVALID_REFERENCEとして返し、トランザクション全体をロールバックする。
	Create(ctx context.Context, ownerID string, input *model.RecipeInput) (*model.Recipe, error)

	// FindByID は指定IDのレシピを子コレクション込みで取得する。
	// 見つからない場合はnilを返す（エラーではない）。
	// 手順はstep_numberの昇順で返される。
	FindByID(ctx context.Context, recipeID string) (*model.Recipe, error)

	// Update はタイトルを更新し、材料・手順を全置換する。
	// 所有者確認と書き込みは同一トランザクション内で行われ、
	// 所有者以外の呼び出しはFORBIDDEN、未検出はRECIPE_NOT_FOUNDを返す。
	// コミット後に読み直した最新状態を返す。
	Update(ctx context.Context, callerID, recipeID string, input *model.RecipeInput) (*model.Recipe, error)

	// Delete はレシピと子レコードを削除する。
	// レシピが存在しない場合は(false, nil)を返す（エラーではない）。
	// 所有者以外の呼び出しはFORBIDDENを返す。
	Delete(ctx context.Context, callerID, recipeID string) (bool, error)

	// List はレシピのヘッダー一覧を作成日時の降順で返す。
	// limit/offsetの正規化は呼び出し側（サービス層）の責務。
	List(ctx context.Context, limit, offset int) ([]model.RecipeSummary, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。メールアドレスの重複はEMAIL_IN_USEを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}
