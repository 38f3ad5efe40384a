package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/recipeman/internal/authz"
	"github.com/hitoshi/recipeman/internal/database"
	"github.com/hitoshi/recipeman/internal/model"
)

// PostgresRecipeRepo はPostgreSQLを使用したレシピ集約リポジトリ。
// レシピと材料・手順の3テーブルにまたがる書き込み（作成・全置換更新・削除）を
// 単一トランザクションで実行し、半端な状態が観測されないことを保証する。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

// Create はレシピと材料・手順の全件を同一トランザクションで作成する。
// いずれかの挿入が制約違反で失敗した場合は全体をロールバックし、
// 3テーブルのどこにも行が残らない。
func (r *PostgresRecipeRepo) Create(ctx context.Context, ownerID string, input *model.RecipeInput) (*model.Recipe, error) {
	recipe := &model.Recipe{
		ID:     uuid.New().String(),
		UserID: ownerID,
		Title:  input.Title,
	}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO recipes (id, user_id, title) VALUES ($1, $2, $3) RETURNING created_at`,
			recipe.ID, ownerID, input.Title,
		).Scan(&recipe.CreatedAt)
		if err != nil {
			if mapped := mapConstraintError(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("failed to insert recipe: %w", err)
		}

		ingredients, instructions, err := insertChildren(ctx, tx, recipe.ID, input)
		if err != nil {
			return err
		}
		recipe.Ingredients = ingredients
		recipe.Instructions = instructions
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recipe, nil
}

// FindByID は指定IDのレシピを子コレクション込みで取得する。見つからない場合はnilを返す。
// 手順はstep_numberの昇順で返す。呼び出し側は番号付きの調理手順を
// この並びから復元するため、昇順は表示上の好みではなく正しさの要件。
func (r *PostgresRecipeRepo) FindByID(ctx context.Context, recipeID string) (*model.Recipe, error) {
	recipe := &model.Recipe{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at FROM recipes WHERE id = $1`,
		recipeID,
	).Scan(&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, name FROM ingredients WHERE recipe_id = $1`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("材料の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Amount, &ing.Name); err != nil {
			return nil, fmt.Errorf("材料の読み取りに失敗しました: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("材料の読み取りに失敗しました: %w", err)
	}

	insRows, err := r.db.QueryContext(ctx,
		`SELECT id, step_number, text FROM instructions WHERE recipe_id = $1 ORDER BY step_number`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("手順の取得に失敗しました: %w", err)
	}
	defer insRows.Close()

	for insRows.Next() {
		var ins model.Instruction
		if err := insRows.Scan(&ins.ID, &ins.StepNumber, &ins.Text); err != nil {
			return nil, fmt.Errorf("手順の読み取りに失敗しました: %w", err)
		}
		recipe.Instructions = append(recipe.Instructions, ins)
	}
	if err := insRows.Err(); err != nil {
		return nil, fmt.Errorf("手順の読み取りに失敗しました: %w", err)
	}

	return recipe, nil
}

// Update はタイトルを更新し、材料・手順を削除してから全件挿入し直す（全置換）。
// 所有者確認と書き込みは同一トランザクション内で行う。
// 所有者の読み取りはFOR UPDATEで行ロックを取得し、確認から書き込みまでの間に
// 別の更新や削除が割り込む競合（check-then-act競合）を防ぐ。
// コミット後に読み直した結果を返し、書き込み内容と返却内容の乖離を防ぐ。
func (r *PostgresRecipeRepo) Update(ctx context.Context, callerID, recipeID string, input *model.RecipeInput) (*model.Recipe, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var ownerID string
		err := tx.QueryRowContext(ctx,
			`SELECT user_id FROM recipes WHERE id = $1 FOR UPDATE`,
			recipeID,
		).Scan(&ownerID)
		if err == sql.ErrNoRows {
			return model.NewRecipeNotFoundError(recipeID)
		}
		if err != nil {
			return fmt.Errorf("failed to read recipe owner: %w", err)
		}

		if err := authz.Authorize(callerID, ownerID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE recipes SET title = $1 WHERE id = $2`,
			input.Title, recipeID,
		); err != nil {
			return fmt.Errorf("failed to update recipe title: %w", err)
		}

		// 旧子レコードを全削除してから新しい全量を挿入する。
		// 差分更新は行わない（クライアントは常に全件を送り直す）。
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM ingredients WHERE recipe_id = $1`, recipeID,
		); err != nil {
			return fmt.Errorf("failed to delete ingredients: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM instructions WHERE recipe_id = $1`, recipeID,
		); err != nil {
			return fmt.Errorf("failed to delete instructions: %w", err)
		}

		_, _, err = insertChildren(ctx, tx, recipeID, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	// コミット後の最新状態を正とする
	recipe, err := r.FindByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, model.NewRecipeNotFoundError(recipeID)
	}
	return recipe, nil
}

// Delete はレシピを削除する。子レコードはON DELETE CASCADEで連鎖削除される。
// レシピが存在しない場合は(false, nil)を返す。
// 存在確認と削除の間に他の操作が割り込まないよう、同一トランザクション内で
// FOR UPDATEの行ロックを取得してから削除する。
func (r *PostgresRecipeRepo) Delete(ctx context.Context, callerID, recipeID string) (bool, error) {
	deleted := false
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var ownerID string
		err := tx.QueryRowContext(ctx,
			`SELECT user_id FROM recipes WHERE id = $1 FOR UPDATE`,
			recipeID,
		).Scan(&ownerID)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read recipe owner: %w", err)
		}

		if err := authz.Authorize(callerID, ownerID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recipes WHERE id = $1`, recipeID,
		); err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// List はレシピのヘッダー一覧を作成日時の降順で返す。子コレクションは含まない。
// 所有者によるフィルタリングは行わない公開一覧。
func (r *PostgresRecipeRepo) List(ctx context.Context, limit, offset int) ([]model.RecipeSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at FROM recipes ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	summaries := []model.RecipeSummary{}
	for rows.Next() {
		var s model.RecipeSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("レシピ一覧の読み取りに失敗しました: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レシピ一覧の読み取りに失敗しました: %w", err)
	}

	return summaries, nil
}

// insertChildren は材料と手順の全件をトランザクション内で挿入する。
// 挿入した子レコード（生成ID込み）を入力と同じ並びで返す。
func insertChildren(ctx context.Context, tx *sql.Tx, recipeID string, input *model.RecipeInput) ([]model.Ingredient, []model.Instruction, error) {
	ingredients := make([]model.Ingredient, 0, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		row := model.Ingredient{
			ID:     uuid.New().String(),
			Amount: ing.Amount,
			Name:   ing.Name,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ingredients (id, recipe_id, amount, name) VALUES ($1, $2, $3, $4)`,
			row.ID, recipeID, row.Amount, row.Name,
		); err != nil {
			if mapped := mapConstraintError(err); mapped != nil {
				return nil, nil, mapped
			}
			return nil, nil, fmt.Errorf("failed to insert ingredient: %w", err)
		}
		ingredients = append(ingredients, row)
	}

	instructions := make([]model.Instruction, 0, len(input.Instructions))
	for _, ins := range input.Instructions {
		row := model.Instruction{
			ID:         uuid.New().String(),
			StepNumber: ins.StepNumber,
			Text:       ins.Text,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO instructions (id, recipe_id, step_number, text) VALUES ($1, $2, $3, $4)`,
			row.ID, recipeID, row.StepNumber, row.Text,
		); err != nil {
			if mapped := mapConstraintError(err); mapped != nil {
				return nil, nil, mapped
			}
			return nil, nil, fmt.Errorf("failed to insert instruction: %w", err)
		}
		instructions = append(instructions, row)
	}

	return ingredients, instructions, nil
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)
