// Package recipe はレシピ集約のドメインロジックを提供する。
package recipe

import (
	"context"
	"fmt"

	"github.com/hitoshi/recipeman/internal/model"
	"github.com/hitoshi/recipeman/internal/repository"
	"github.com/hitoshi/recipeman/internal/security"
)

// 一覧のページサイズ。limit未指定時はDefaultListLimit、上限はMaxListLimitに丸める。
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Service はレシピ管理のサービス層。
// 入力の検証・サニタイズとページングの正規化を行い、永続化はリポジトリに委譲する。
type Service struct {
	repo      repository.RecipeRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.RecipeRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// CreateRecipe はレシピを作成する。
func (s *Service) CreateRecipe(ctx context.Context, ownerID string, input *model.RecipeInput) (*model.Recipe, error) {
	sanitized := s.sanitizeInput(input)
	if err := validateInput(sanitized); err != nil {
		return nil, err
	}

	recipe, err := s.repo.Create(ctx, ownerID, sanitized)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// GetRecipe は指定IDのレシピを子コレクション込みで返す。
// 見つからない場合はnilを返す（エラーではない想定内の結果）。
func (s *Service) GetRecipe(ctx context.Context, recipeID string) (*model.Recipe, error) {
	recipe, err := s.repo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	return recipe, nil
}

// UpdateRecipe はレシピのタイトルを更新し、材料・手順を全置換する。
// 所有者以外の呼び出しはFORBIDDEN、未検出はRECIPE_NOT_FOUNDが返る。
func (s *Service) UpdateRecipe(ctx context.Context, callerID, recipeID string, input *model.RecipeInput) (*model.Recipe, error) {
	sanitized := s.sanitizeInput(input)
	if err := validateInput(sanitized); err != nil {
		return nil, err
	}

	recipe, err := s.repo.Update(ctx, callerID, recipeID, sanitized)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// DeleteRecipe はレシピを削除する。存在しない場合は(false, nil)を返す。
func (s *Service) DeleteRecipe(ctx context.Context, callerID, recipeID string) (bool, error) {
	return s.repo.Delete(ctx, callerID, recipeID)
}

// ListRecipes はレシピのヘッダー一覧を作成日時の降順で返す。
// limitが0以下の場合はDefaultListLimit、MaxListLimit超過はMaxListLimitに丸める。
// 負のoffsetは0に丸める。レスポンスサイズを抑えるための上限であり、エラーにはしない。
func (s *Service) ListRecipes(ctx context.Context, limit, offset int) ([]model.RecipeSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	summaries, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}
	return summaries, nil
}

// sanitizeInput はクライアント入力のテキストフィールドからHTMLタグを除去する。
// 保存型XSS対策として保存前に必ず適用する。
func (s *Service) sanitizeInput(input *model.RecipeInput) *model.RecipeInput {
	out := &model.RecipeInput{
		Title:        s.sanitizer.SanitizeText(input.Title),
		Ingredients:  make([]model.IngredientInput, len(input.Ingredients)),
		Instructions: make([]model.InstructionInput, len(input.Instructions)),
	}
	for i, ing := range input.Ingredients {
		out.Ingredients[i] = model.IngredientInput{
			Amount: s.sanitizer.SanitizeText(ing.Amount),
			Name:   s.sanitizer.SanitizeText(ing.Name),
		}
	}
	for i, ins := range input.Instructions {
		out.Instructions[i] = model.InstructionInput{
			StepNumber: ins.StepNumber,
			Text:       s.sanitizer.SanitizeText(ins.Text),
		}
	}
	return out
}

// validateInput はレシピ入力の基本的な妥当性を検証する。
// 手順番号の一意性はここでは検査せず、DBのユニーク制約に委ねる
// （並行書き込み下でもアプリ側の事前検査では保証できないため）。
func validateInput(input *model.RecipeInput) error {
	if input.Title == "" {
		return model.NewValidationError("タイトルは必須です")
	}
	for _, ins := range input.Instructions {
		if ins.StepNumber < 1 {
			return model.NewValidationError("手順番号は1以上の整数にしてください")
		}
	}
	return nil
}
