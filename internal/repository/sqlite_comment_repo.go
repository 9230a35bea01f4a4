package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/recipeshare/internal/model"
)

// SQLiteCommentRepo はSQLiteを使用したコメントリポジトリ。
type SQLiteCommentRepo struct {
	db *sql.DB
}

// NewSQLiteCommentRepo はSQLiteCommentRepoを生成する。
func NewSQLiteCommentRepo(db *sql.DB) *SQLiteCommentRepo {
	return &SQLiteCommentRepo{db: db}
}

// ListByRecipe は指定レシピの全コメントを古い順に返す。
func (r *SQLiteCommentRepo) ListByRecipe(ctx context.Context, recipeID int64) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.recipe_id, c.user_id, c.content, c.created_at, u.username
		 FROM comments c
		 LEFT JOIN users u ON c.user_id = u.id
		 WHERE c.recipe_id = ?
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
func (r *SQLiteCommentRepo) Create(ctx context.Context, recipeID, userID int64, content string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (recipe_id, user_id, content) VALUES (?, ?, ?)`,
		recipeID, userID, content,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted comment ID: %w", err)
	}

	return id, nil
}

// compile-time interface check
var _ CommentRepository = (*SQLiteCommentRepo)(nil)
