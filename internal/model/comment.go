package model

import "time"

// Comment はレシピへのコメントを表す。
// AuthorNameはコメント投稿者usernameとのJOIN結果で、一覧取得時のみ設定される。
type Comment struct {
	ID         int64
	RecipeID   int64
	UserID     int64
	Content    string
	CreatedAt  time.Time
	AuthorName string
}
