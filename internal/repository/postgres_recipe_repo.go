package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/recipeshare/internal/model"
)

// PostgresRecipeRepo はPostgreSQLを使用したレシピリポジトリ。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

// Create はレシピを作成し、新しいIDを返す。
func (r *PostgresRecipeRepo) Create(ctx context.Context, recipe *model.Recipe) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO recipes (title, description, ingredients, instructions, created_by, image_data, image_mime)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions,
		recipe.CreatedBy, recipe.ImageData, nullString(recipe.ImageMime),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}

	return id, nil
}

// FindByID は指定IDのレシピを投稿者usernameとJOINして取得する。
// 見つからない場合はnilを返す。
func (r *PostgresRecipeRepo) FindByID(ctx context.Context, id int64) (*model.Recipe, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT r.id, r.title, r.description, r.ingredients, r.instructions,
		        r.image_data, r.image_mime, r.created_by, r.created_at, u.username
		 FROM recipes r
		 LEFT JOIN users u ON r.created_by = u.id
		 WHERE r.id = $1`,
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
func (r *PostgresRecipeRepo) ListAll(ctx context.Context) ([]*model.Recipe, error) {
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
func (r *PostgresRecipeRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.description, r.ingredients, r.instructions,
		        r.image_data, r.image_mime, r.created_by, r.created_at, u.username
		 FROM recipes r
		 LEFT JOIN users u ON r.created_by = u.id
		 WHERE r.created_by = $1
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
func (r *PostgresRecipeRepo) Update(ctx context.Context, id int64, recipe *model.Recipe, image model.ImageUpdate) error {
	var err error

	switch image.Mode {
	case model.ImageClear:
		_, err = r.db.ExecContext(ctx,
			`UPDATE recipes
			 SET title = $1, description = $2, ingredients = $3, instructions = $4,
			     image_data = NULL, image_mime = NULL
			 WHERE id = $5`,
			recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions, id,
		)
	case model.ImageReplace:
		_, err = r.db.ExecContext(ctx,
			`UPDATE recipes
			 SET title = $1, description = $2, ingredients = $3, instructions = $4,
			     image_data = $5, image_mime = $6
			 WHERE id = $7`,
			recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions,
			image.Data, nullString(image.Mime), id,
		)
	default:
		_, err = r.db.ExecContext(ctx,
			`UPDATE recipes
			 SET title = $1, description = $2, ingredients = $3, instructions = $4
			 WHERE id = $5`,
			recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions, id,
		)
	}

	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	return nil
}

// Delete は指定IDのレシピを削除する。コメントはCASCADE削除される。
func (r *PostgresRecipeRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)
