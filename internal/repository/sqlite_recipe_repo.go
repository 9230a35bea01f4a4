package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/recipeshare/internal/model"
)

// SQLiteRecipeRepo はSQLiteを使用したレシピリポジトリ。
type SQLiteRecipeRepo struct {
	db *sql.DB
}

// NewSQLiteRecipeRepo はSQLiteRecipeRepoを生成する。
func NewSQLiteRecipeRepo(db *sql.DB) *SQLiteRecipeRepo {
	return &SQLiteRecipeRepo{db: db}
}

// Create はレシピを作成し、新しいIDを返す。
func (r *SQLiteRecipeRepo) Create(ctx context.Context, recipe *model.Recipe) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO recipes (title, description, ingredients, instructions, created_by, image_data, image_mime)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions,
		recipe.CreatedBy, recipe.ImageData, nullString(recipe.ImageMime),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted recipe ID: %w", err)
	}

	return id, nil
}

// FindByID は指定IDのレシピを投稿者usernameとJOINして取得する。
// 見つからない場合はnilを返す。
func (r *SQLiteRecipeRepo) FindByID(ctx context.Context, id int64) (*model.Recipe, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT r.id, r.title, r.description, r.ingredients, r.instructions,
		        r.image_data, r.image_mime, r.created_by, r.created_at, u.username
		 FROM recipes r
		 LEFT JOIN users u ON r.created_by = u.id
		 WHERE r.id = ?`,
		id,
	)

	recipe, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipe by ID: %w", err)
	}

	return recipe, nil
}

// ListAll は全レシピを新しい順に返す。
func (r *SQLiteRecipeRepo) ListAll(ctx context.Context) ([]*model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.description, r.ingredients, r.instructions,
		        r.image_data, r.image_mime, r.created_by, r.created_at, u.username
		 FROM recipes r
		 LEFT JOIN users u ON r.created_by = u.id
		 ORDER BY r.created_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// ListByOwner は指定ユーザーが投稿したレシピを新しい順に返す。
func (r *SQLiteRecipeRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.description, r.ingredients, r.instructions,
		        r.image_data, r.image_mime, r.created_by, r.created_at, u.username
		 FROM recipes r
		 LEFT JOIN users u ON r.created_by = u.id
		 WHERE r.created_by = ?
		 ORDER BY r.created_at DESC, r.id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes by owner: %w", err)
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// Update はテキスト項目を無条件に置き換え、画像は3値指定に従って更新する。
func (r *SQLiteRecipeRepo) Update(ctx context.Context, id int64, recipe *model.Recipe, image model.ImageUpdate) error {
	var err error

	switch image.Mode {
	case model.ImageClear:
		_, err = r.db.ExecContext(ctx,
			`UPDATE recipes
			 SET title = ?, description = ?, ingredients = ?, instructions = ?,
			     image_data = NULL, image_mime = NULL
			 WHERE id = ?`,
			recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions, id,
		)
	case model.ImageReplace:
		_, err = r.db.ExecContext(ctx,
			`UPDATE recipes
			 SET title = ?, description = ?, ingredients = ?, instructions = ?,
			     image_data = ?, image_mime = ?
			 WHERE id = ?`,
			recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions,
			image.Data, nullString(image.Mime), id,
		)
	default:
		_, err = r.db.ExecContext(ctx,
			`UPDATE recipes
			 SET title = ?, description = ?, ingredients = ?, instructions = ?
			 WHERE id = ?`,
			recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions, id,
		)
	}

	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	return nil
}

// Delete は指定IDのレシピを削除する。コメントはCASCADE削除される。
func (r *SQLiteRecipeRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// compile-time interface check
var _ RecipeRepository = (*SQLiteRecipeRepo)(nil)
