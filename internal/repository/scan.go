package repository

import (
	"database/sql"

	"github.com/hitoshi/recipeshare/internal/model"
)

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecipe はレシピ1行（投稿者usernameとのLEFT JOIN込み）を読み取る。
// 列順はpostgres実装・sqlite実装のSELECTで共通。
func scanRecipe(row rowScanner) (*model.Recipe, error) {
	var (
		recipe      model.Recipe
		description sql.NullString
		ingredients sql.NullString
		imageMime   sql.NullString
		createdBy   sql.NullInt64
		authorName  sql.NullString
	)

	err := row.Scan(
		&recipe.ID, &recipe.Title, &description, &ingredients, &recipe.Instructions,
		&recipe.ImageData, &imageMime, &createdBy, &recipe.CreatedAt, &authorName,
	)
	if err != nil {
		return nil, err
	}

	recipe.Description = description.String
	recipe.Ingredients = ingredients.String
	recipe.ImageMime = imageMime.String
	recipe.AuthorName = authorName.String
	if createdBy.Valid {
		id := createdBy.Int64
		recipe.CreatedBy = &id
	}

	return &recipe, nil
}

// collectRecipes は複数行のレシピを読み取る。
func collectRecipes(rows *sql.Rows) ([]*model.Recipe, error) {
	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recipes, nil
}

// scanComment はコメント1行（投稿者usernameとのLEFT JOIN込み）を読み取る。
func scanComment(row rowScanner) (*model.Comment, error) {
	var (
		comment    model.Comment
		authorName sql.NullString
	)

	err := row.Scan(
		&comment.ID, &comment.RecipeID, &comment.UserID,
		&comment.Content, &comment.CreatedAt, &authorName,
	)
	if err != nil {
		return nil, err
	}

	comment.AuthorName = authorName.String
	return &comment, nil
}

// nullString は空文字列をNULLとして書き込むためのヘルパー。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
