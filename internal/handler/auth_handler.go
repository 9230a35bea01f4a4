package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/hitoshi/recipeshare/internal/auth"
	"github.com/hitoshi/recipeshare/internal/middleware"
	"github.com/hitoshi/recipeshare/internal/model"
	"github.com/hitoshi/recipeshare/internal/session"
	"github.com/hitoshi/recipeshare/internal/view"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, username, password string) (*auth.Principal, error)
	Login(ctx context.Context, username, password string) (*auth.Principal, error)
}

// SessionWriter はセッションCookieの発行・破棄に必要なインターフェース。
// session.Managerの部分集合として定義する。
type SessionWriter interface {
	Issue(w http.ResponseWriter, p auth.Principal) error
	Clear(w http.ResponseWriter)
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionWriter
	renderer
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, sessions SessionWriter, views *view.Renderer) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		renderer: renderer{views: views},
	}
}

// authFormData はログイン・登録フォームのテンプレートデータ。
type authFormData struct {
	Next string
}

// RegisterForm は登録フォームを表示する。
// GET /register
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	// ログイン済みならホームへ
	if _, ok := middleware.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, view.PageRegister, "Register", authFormData{
		Next: safeNext(r.URL.Query().Get("next")),
	})
}

// Register は新規ユーザーを作成し、セッションを開始する。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	data := authFormData{Next: safeNext(r.PostFormValue("next"))}

	if username == "" || password == "" {
		h.renderWithFlash(w, r, http.StatusOK, view.PageRegister, "Register", data,
			&session.Flash{Category: session.FlashDanger, Message: "Username and password are required."})
		return
	}

	principal, err := h.service.Register(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			h.renderWithFlash(w, r, http.StatusOK, view.PageRegister, "Register", data,
				&session.Flash{Category: session.FlashDanger, Message: "Username already taken. Please choose another."})
			return
		}
		internalError(w, "failed to register user", err)
		return
	}

	if err := h.sessions.Issue(w, *principal); err != nil {
		internalError(w, "failed to issue session", err)
		return
	}

	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

// LoginForm はログインフォームを表示する。
// GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, view.PageLogin, "Login", authFormData{
		Next: safeNext(r.URL.Query().Get("next")),
	})
}

// Login は認証情報を検証し、セッションを開始する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	data := authFormData{Next: safeNext(r.PostFormValue("next"))}

	principal, err := h.service.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			h.renderWithFlash(w, r, http.StatusOK, view.PageLogin, "Login", data,
				&session.Flash{Category: session.FlashDanger, Message: "Invalid username or password"})
			return
		}
		internalError(w, "failed to login", err)
		return
	}

	if err := h.sessions.Issue(w, *principal); err != nil {
		internalError(w, "failed to issue session", err)
		return
	}

	session.SetFlash(w, session.FlashSuccess, "Logged in successfully!")
	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

// Logout はセッションを破棄してホームへリダイレクトする。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	session.SetFlash(w, session.FlashSuccess, "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusFound)
}
