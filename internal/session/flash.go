package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookieName はフラッシュメッセージを運ぶCookieの名前。
const flashCookieName = "flash"

// フラッシュメッセージのカテゴリ。テンプレート側でスタイルに写される。
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// Flash はリダイレクト後に1回だけ表示するメッセージ。
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SetFlash はフラッシュメッセージCookieを設定する。
// 次のページ描画時にPopFlashで消費される。
func SetFlash(w http.ResponseWriter, category, message string) {
	data, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash はフラッシュメッセージを読み取り、Cookieを削除する。
// メッセージが無い場合はnilを返す。
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}
