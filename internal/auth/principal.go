// Package auth はユーザー登録・ログインとセッション主体の表現を提供する。
package auth

import (
	"strconv"

	"github.com/hitoshi/recipeshare/internal/model"
)

// Principal は認証済みユーザーをセッションに載せられる形で表す。
// IDはセッショントランスポート都合で文字列として保持する。
type Principal struct {
	ID       string
	Username string
}

// NewPrincipal はユーザーレコードからPrincipalを生成する。
func NewPrincipal(user *model.User) Principal {
	return Principal{
		ID:       strconv.FormatInt(user.ID, 10),
		Username: user.Username,
	}
}

// UserID はPrincipalのIDを数値として返す。
func (p Principal) UserID() (int64, error) {
	id, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}
