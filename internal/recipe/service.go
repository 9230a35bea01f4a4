// Package recipe はレシピとコメントのビジネスロジックを提供する。
package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/recipeshare/internal/model"
	"github.com/hitoshi/recipeshare/internal/repository"
)

// Input はレシピの作成・更新で受け取るテキスト項目。
type Input struct {
	Title        string
	Description  string
	Ingredients  string
	Instructions string
}

// validate はtitleとinstructionsの必須チェックを行う。
func (in *Input) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Instructions) == "" {
		return model.ErrMissingRequired
	}
	return nil
}

// Service はレシピとコメントに関するビジネスロジックを提供する。
// 「投稿者のみが編集・削除できる」の所有チェックはこの層で行い、
// リポジトリには到達させない。
type Service struct {
	recipes  repository.RecipeRepository
	comments repository.CommentRepository
}

// NewService はServiceを生成する。
func NewService(recipes repository.RecipeRepository, comments repository.CommentRepository) *Service {
	return &Service{
		recipes:  recipes,
		comments: comments,
	}
}

// Create はレシピを作成して新しいIDを返す。
// titleまたはinstructionsが空の場合はmodel.ErrMissingRequiredを返し、行は作成されない。
func (s *Service) Create(ctx context.Context, ownerID int64, input Input, imageData []byte, imageMime string) (int64, error) {
	if err := input.validate(); err != nil {
		return 0, err
	}

	recipe := &model.Recipe{
		Title:        input.Title,
		Description:  input.Description,
		Ingredients:  input.Ingredients,
		Instructions: input.Instructions,
		ImageData:    imageData,
		ImageMime:    imageMime,
		CreatedBy:    &ownerID,
	}

	id, err := s.recipes.Create(ctx, recipe)
	if err != nil {
		return 0, err
	}

	slog.Info("recipe created",
		slog.Int64("recipe_id", id),
		slog.Int64("user_id", ownerID),
	)

	return id, nil
}

// Get は指定IDのレシピを取得する。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	return s.recipes.FindByID(ctx, id)
}

// List は全レシピを新しい順に返す。
func (s *Service) List(ctx context.Context) ([]*model.Recipe, error) {
	return s.recipes.ListAll(ctx)
}

// ListByOwner は指定ユーザーのレシピを新しい順に返す。
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Recipe, error) {
	return s.recipes.ListByOwner(ctx, ownerID)
}

// Update はレシピを更新する。
// テキスト項目は無条件に置き換え、画像はimageの3値指定に従う。
// レシピ不在はmodel.ErrNotFound、投稿者以外の要求はmodel.ErrForbiddenを返す。
func (s *Service) Update(ctx context.Context, userID, recipeID int64, input Input, image model.ImageUpdate) error {
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return model.ErrNotFound
	}
	if !recipe.IsOwnedBy(userID) {
		return model.ErrForbidden
	}

	if err := input.validate(); err != nil {
		return err
	}

	updated := &model.Recipe{
		Title:        input.Title,
		Description:  input.Description,
		Ingredients:  input.Ingredients,
		Instructions: input.Instructions,
	}

	if err := s.recipes.Update(ctx, recipeID, updated, image); err != nil {
		return err
	}

	slog.Info("recipe updated",
		slog.Int64("recipe_id", recipeID),
		slog.Int64("user_id", userID),
	)

	return nil
}

// Delete はレシピを削除する。コメントはカスケード削除される。
// レシピ不在はmodel.ErrNotFound、投稿者以外の要求はmodel.ErrForbiddenを返す。
func (s *Service) Delete(ctx context.Context, userID, recipeID int64) error {
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return model.ErrNotFound
	}
	if !recipe.IsOwnedBy(userID) {
		return model.ErrForbidden
	}

	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		return err
	}

	slog.Info("recipe deleted",
		slog.Int64("recipe_id", recipeID),
		slog.Int64("user_id", userID),
	)

	return nil
}

// Comments は指定レシピのコメントを古い順に返す。
func (s *Service) Comments(ctx context.Context, recipeID int64) ([]*model.Comment, error) {
	return s.comments.ListByRecipe(ctx, recipeID)
}

// AddComment はレシピにコメントを追加して新しいIDを返す。
// 本文が空の場合はmodel.ErrMissingRequired。
// 対象レシピの存在をINSERT前に確認し、不在ならmodel.ErrNotFoundを返す
// （外部キー違反をDBに拒否させることには頼らない）。
func (s *Service) AddComment(ctx context.Context, userID, recipeID int64, content string) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, model.ErrMissingRequired
	}

	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return 0, fmt.Errorf("failed to check recipe: %w", err)
	}
	if recipe == nil {
		return 0, model.ErrNotFound
	}

	id, err := s.comments.Create(ctx, recipeID, userID, content)
	if err != nil {
		return 0, err
	}

	slog.Info("comment posted",
		slog.Int64("comment_id", id),
		slog.Int64("recipe_id", recipeID),
		slog.Int64("user_id", userID),
	)

	return id, nil
}
