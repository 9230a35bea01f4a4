// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipeshare/internal/middleware"
	"github.com/hitoshi/recipeshare/internal/session"
	"github.com/hitoshi/recipeshare/internal/view"
)

// renderer はページ描画の共通処理をまとめる。
// 認証主体はコンテキストから、フラッシュはCookieから取り出してPageに詰める。
type renderer struct {
	views *view.Renderer
}

// render はフラッシュCookieを消費してページを描画する。
func (r *renderer) render(w http.ResponseWriter, req *http.Request, statusCode int, name, title string, data any) {
	principal, _ := middleware.PrincipalFromContext(req.Context())
	r.views.Render(w, statusCode, name, view.Page{
		Title:     title,
		Principal: principal,
		Flash:     session.PopFlash(w, req),
		Data:      data,
	})
}

// renderWithFlash はリダイレクトを挟まない再描画用に、
// Cookieではなく指定されたフラッシュを直接表示する。
func (r *renderer) renderWithFlash(w http.ResponseWriter, req *http.Request, statusCode int, name, title string, data any, flash *session.Flash) {
	principal, _ := middleware.PrincipalFromContext(req.Context())
	r.views.Render(w, statusCode, name, view.Page{
		Title:     title,
		Principal: principal,
		Flash:     flash,
		Data:      data,
	})
}

// recipeIDFromURL はURLパスパラメータからレシピIDを取り出す。
func recipeIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// safeNext はnextパラメータをローカルパスに限定して返す。
// 外部URLへのオープンリダイレクトを防ぐため、条件を満たさない場合はホームを返す。
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}

// internalError は予期しないエラーをログに記録して500を返す。
func internalError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
