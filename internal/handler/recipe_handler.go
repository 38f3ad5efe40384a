package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipeman/internal/middleware"
	"github.com/hitoshi/recipeman/internal/model"
)

// RecipeServiceInterface はレシピハンドラーが必要とするサービスインターフェース。
type RecipeServiceInterface interface {
	// CreateRecipe はレシピと子コレクションを原子的に作成する。
	CreateRecipe(ctx context.Context, ownerID string, input *model.RecipeInput) (*model.Recipe, error)
	// GetRecipe はレシピを取得する。存在しない場合は(nil, nil)を返す。
	GetRecipe(ctx context.Context, recipeID string) (*model.Recipe, error)
	// UpdateRecipe はタイトルと子コレクションを全置換する。
	UpdateRecipe(ctx context.Context, callerID, recipeID string, input *model.RecipeInput) (*model.Recipe, error)
	// DeleteRecipe はレシピを削除する。存在しない場合は(false, nil)を返す。
	DeleteRecipe(ctx context.Context, callerID, recipeID string) (bool, error)
	// ListRecipes はレシピのヘッダー一覧を新しい順に返す。
	ListRecipes(ctx context.Context, limit, offset int) ([]model.RecipeSummary, error)
}

// RecipeHandler はレシピCRUDのHTTPハンドラー。
type RecipeHandler struct {
	service RecipeServiceInterface
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(service RecipeServiceInterface) *RecipeHandler {
	return &RecipeHandler{
		service: service,
	}
}

// recipeRequest はレシピ作成・更新リクエストのボディ。
type recipeRequest struct {
	Title        string               `json:"title"`
	Ingredients  []ingredientRequest  `json:"ingredients"`
	Instructions []instructionRequest `json:"instructions"`
}

type ingredientRequest struct {
	Amount string `json:"amount"`
	Name   string `json:"name"`
}

type instructionRequest struct {
	StepNumber int    `json:"step_number"`
	Text       string `json:"text"`
}

// recipeResponse はレシピ詳細のAPIレスポンス。
type recipeResponse struct {
	ID           string                `json:"id"`
	UserID       string                `json:"user_id"`
	Title        string                `json:"title"`
	CreatedAt    time.Time             `json:"created_at"`
	Ingredients  []ingredientResponse  `json:"ingredients"`
	Instructions []instructionResponse `json:"instructions"`
}

type ingredientResponse struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Name   string `json:"name"`
}

type instructionResponse struct {
	ID         string `json:"id"`
	StepNumber int    `json:"step_number"`
	Text       string `json:"text"`
}

// recipeSummaryResponse はレシピ一覧のAPIレスポンス。
type recipeSummaryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRecipe はレシピ作成を処理する。
// POST /recipes
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	input, ok := decodeRecipeRequest(w, r)
	if !ok {
		return
	}

	recipe, err := h.service.CreateRecipe(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toRecipeResponse(recipe))
}

// GetRecipe はレシピ詳細を取得する。
// GET /recipes/:id
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")

	recipe, err := h.service.GetRecipe(r.Context(), recipeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if recipe == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewRecipeNotFoundError(recipeID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toRecipeResponse(recipe))
}

// UpdateRecipe はレシピの全置換更新を処理する。
// PUT /recipes/:id
func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	recipeID := chi.URLParam(r, "id")

	input, ok := decodeRecipeRequest(w, r)
	if !ok {
		return
	}

	recipe, err := h.service.UpdateRecipe(r.Context(), userID, recipeID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toRecipeResponse(recipe))
}

// DeleteRecipe はレシピ削除を処理する。
// DELETE /recipes/:id
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	recipeID := chi.URLParam(r, "id")

	deleted, err := h.service.DeleteRecipe(r.Context(), userID, recipeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if !deleted {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewRecipeNotFoundError(recipeID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRecipes はレシピ一覧を取得する。
// GET /recipes?limit=50&offset=0
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	limit, err := parseQueryInt(r, "limit", 0)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("limitは数値で指定してください"))
		return
	}

	offset, err := parseQueryInt(r, "offset", 0)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("offsetは数値で指定してください"))
		return
	}

	summaries, err := h.service.ListRecipes(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]recipeSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, recipeSummaryResponse{
			ID:        s.ID,
			UserID:    s.UserID,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- ヘルパー関数 ---

// decodeRecipeRequest はリクエストボディをRecipeInputに変換する。
// 解析失敗時はエラーレスポンスを書き込み、falseを返す。
func decodeRecipeRequest(w http.ResponseWriter, r *http.Request) (*model.RecipeInput, bool) {
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return nil, false
	}

	input := &model.RecipeInput{
		Title:        req.Title,
		Ingredients:  make([]model.IngredientInput, 0, len(req.Ingredients)),
		Instructions: make([]model.InstructionInput, 0, len(req.Instructions)),
	}
	for _, ing := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, model.IngredientInput{
			Amount: ing.Amount,
			Name:   ing.Name,
		})
	}
	for _, ins := range req.Instructions {
		input.Instructions = append(input.Instructions, model.InstructionInput{
			StepNumber: ins.StepNumber,
			Text:       ins.Text,
		})
	}

	return input, true
}

// parseQueryInt はクエリパラメータを整数として解析する。未指定の場合はdefaultValを返す。
func parseQueryInt(r *http.Request, key string, defaultVal int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

// toRecipeResponse はmodel.RecipeからAPIレスポンスに変換する。
func toRecipeResponse(recipe *model.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:           recipe.ID,
		UserID:       recipe.UserID,
		Title:        recipe.Title,
		CreatedAt:    recipe.CreatedAt,
		Ingredients:  make([]ingredientResponse, 0, len(recipe.Ingredients)),
		Instructions: make([]instructionResponse, 0, len(recipe.Instructions)),
	}
	for _, ing := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, ingredientResponse{
			ID:     ing.ID,
			Amount: ing.Amount,
			Name:   ing.Name,
		})
	}
	for _, ins := range recipe.Instructions {
		resp.Instructions = append(resp.Instructions, instructionResponse{
			ID:         ins.ID,
			StepNumber: ins.StepNumber,
			Text:       ins.Text,
		})
	}
	return resp
}
