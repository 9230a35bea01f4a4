package middleware

import (
	"net/http"
	"net/url"
)

// NewRequireAuthMiddleware は未認証リクエストをログインページへリダイレクトする
// ミドルウェアを返す。元のリクエスト先はnextクエリパラメータで引き継ぎ、
// ログイン成功後に復帰できるようにする。
func NewRequireAuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
