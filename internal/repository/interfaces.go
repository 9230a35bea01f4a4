// Package repository はデータ永続化のインターフェースを定義する。
// PostgreSQL実装とSQLite実装の2系統があり、呼び出し側は
// どちらのバックエンドが有効かに依存してはならない。
package repository

import (
	"context"

	"github.com/hitoshi/recipeshare/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByUsername はusernameでユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成し、新しいIDを返す。
	// usernameの一意制約違反の場合はmodel.ErrUsernameTakenを返す。
	Create(ctx context.Context, username, password string) (int64, error)
}

// RecipeRepository はレシピデータの永続化インターフェース。
type RecipeRepository interface {
	// Create はレシピを作成し、新しいIDを返す。
	// title・instructionsの必須チェックは呼び出し側の責務。
	Create(ctx context.Context, recipe *model.Recipe) (int64, error)

	// FindByID は指定IDのレシピを投稿者usernameとJOINして取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Recipe, error)

	// ListAll は全レシピを新しい順に返す。
	ListAll(ctx context.Context) ([]*model.Recipe, error)

	// ListByOwner は指定ユーザーが投稿したレシピを新しい順に返す。
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Recipe, error)

	// Update はテキスト項目を無条件に置き換え、画像はimageの3値指定
	// （Keep=変更なし / Clear=削除 / Replace=置換）に従って更新する。
	Update(ctx context.Context, id int64, recipe *model.Recipe, image model.ImageUpdate) error

	// Delete は指定IDのレシピを削除する。
	// 関連コメントはON DELETE CASCADEで削除される。
	Delete(ctx context.Context, id int64) error
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// ListByRecipe は指定レシピの全コメントを投稿者usernameとJOINして
	// 古い順に返す。
	ListByRecipe(ctx context.Context, recipeID int64) ([]*model.Comment, error)

	// Create はコメントを作成し、新しいIDを返す。
	Create(ctx context.Context, recipeID, userID int64, content string) (int64, error)
}
