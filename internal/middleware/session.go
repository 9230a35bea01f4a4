// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net/http"

	"github.com/hitoshi/recipeshare/internal/auth"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証主体を格納するためのキー。
var principalContextKey = contextKey("principal")

// SessionReader はリクエストからセッション主体を復元するインターフェース。
// session.Managerの部分集合として定義する。
type SessionReader interface {
	Read(r *http.Request) *auth.Principal
}

// NewSessionMiddleware はセッションCookieを読み取り、検証に成功した場合のみ
// Principalをリクエストコンテキストに注入するミドルウェアを返す。
// 匿名リクエストはそのまま通す（認証の強制はRequireAuthが行う）。
func NewSessionMiddleware(sessions SessionReader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := sessions.Read(r); p != nil {
				ctx := context.WithValue(r.Context(), principalContextKey, p)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認証主体を取得する。
// 匿名リクエストではnilとfalseを返す。
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*auth.Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// ContextWithPrincipal はコンテキストに認証主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}
