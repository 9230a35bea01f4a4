// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Passwordには登録時に入力された認証情報がそのまま格納される
// （ハッシュ化の有無はauth.PasswordVerifierの実装に依存する）。
type User struct {
	ID        int64
	Username  string
	Password  string
	CreatedAt time.Time
}
