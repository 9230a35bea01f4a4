// Package view はhtml/templateによるサーバーサイドレンダリングを提供する。
// テンプレートはバイナリに埋め込み、起動時に1回だけパースする。
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/recipeshare/internal/auth"
	"github.com/hitoshi/recipeshare/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// ページテンプレート名。Renderのname引数に渡す。
const (
	PageIndex        = "index.html"
	PageLogin        = "login.html"
	PageRegister     = "register.html"
	PageRecipeDetail = "recipe_detail.html"
	PageCreateRecipe = "create_recipe.html"
	PageEditRecipe   = "edit_recipe.html"
	PageProfile      = "profile.html"
)

// Page は全ページ共通のテンプレートデータ。
// Dataにはページ固有の構造体を渡す。
type Page struct {
	Title     string
	Principal *auth.Principal
	Flash     *session.Flash
	Data      any
}

// Renderer はパース済みテンプレートを保持し、ページ描画を行う。
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer は埋め込みテンプレートをパースしてRendererを生成する。
// 各ページはbase.htmlと組み合わせてパースする。
func NewRenderer() (*Renderer, error) {
	names := []string{
		PageIndex, PageLogin, PageRegister, PageRecipeDetail,
		PageCreateRecipe, PageEditRecipe, PageProfile,
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.ParseFS(templatesFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

// Render は指定ページを描画する。
// テンプレート実行エラー時は書きかけのレスポンスを避けるため、
// 一旦バッファに描画してから書き出す。
func (r *Renderer) Render(w http.ResponseWriter, statusCode int, name string, page Page) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown template", slog.String("name", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", page); err != nil {
		slog.Error("failed to render template",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = buf.WriteTo(w)
}
