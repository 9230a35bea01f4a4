package model

import "errors"

// ドメイン層で判別が必要なエラー。
// リポジトリ・サービスはドライバ固有のエラーをこれらに変換して返し、
// ハンドラーはerrors.Isで分岐してフラッシュメッセージやステータスコードに写す。
var (
	// ErrUsernameTaken はusernameの一意制約違反を表す。
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials はログイン認証失敗を表す。
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotFound は対象リソース（レシピ・ユーザー）の不在を表す。
	ErrNotFound = errors.New("not found")

	// ErrForbidden は投稿者以外によるレシピの編集・削除要求を表す。
	ErrForbidden = errors.New("forbidden")

	// ErrMissingRequired は必須項目（title・instructions・コメント本文）の欠落を表す。
	ErrMissingRequired = errors.New("required field missing")
)
