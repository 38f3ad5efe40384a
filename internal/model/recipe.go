// Package model はドメインモデルを定義する。
package model

import "time"

// Recipe はレシピ集約のルートを表す。
// 材料と手順はレシピに完全に所有される子コレクションであり、
// レシピの外から参照されることはない。更新時は全置換される。
type Recipe struct {
	ID           string
	UserID       string
	Title        string
	CreatedAt    time.Time
	Ingredients  []Ingredient
	Instructions []Instruction
}

// Ingredient はレシピの材料を表す。表示順は登録順を維持する。
type Ingredient struct {
	ID     string
	Amount string
	Name   string
}

// Instruction はレシピの手順を表す。
// StepNumberは1つのレシピ内で一意（DBのユニーク制約で保証される）。
type Instruction struct {
	ID         string
	StepNumber int
	Text       string
}

// RecipeSummary はレシピ一覧用のヘッダー情報。子コレクションは含まない。
type RecipeSummary struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
}

// RecipeInput はレシピ作成・更新の入力を表す。
// 更新時も材料・手順は全件を送り直す（部分更新はサポートしない）。
type RecipeInput struct {
	Title        string
	Ingredients  []IngredientInput
	Instructions []InstructionInput
}

// IngredientInput は材料の入力を表す。
type IngredientInput struct {
	Amount string
	Name   string
}

// InstructionInput は手順の入力を表す。
type InstructionInput struct {
	StepNumber int
	Text       string
}
