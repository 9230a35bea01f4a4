package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/recipeshare/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// ListByRecipe は指定レシピの全コメントを古い順に返す。
func (r *PostgresCommentRepo) ListByRecipe(ctx context.Context, recipeID int64) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.recipe_id, c.user_id, c.content, c.created_at, u.username
		 FROM comments c
		 LEFT JOIN users u ON c.user_id = u.id
		 WHERE c.recipe_id = $1
		 ORDER BY c.id ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// Create はコメントを作成し、新しいIDを返す。
func (r *PostgresCommentRepo) Create(ctx context.Context, recipeID, userID int64, content string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (recipe_id, user_id, content) VALUES ($1, $2, $3) RETURNING id`,
		recipeID, userID, content,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert comment: %w", err)
	}

	return id, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
