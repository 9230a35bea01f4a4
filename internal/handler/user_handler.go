package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipeshare/internal/model"
	"github.com/hitoshi/recipeshare/internal/session"
	"github.com/hitoshi/recipeshare/internal/view"
)

// UserFinder はプロフィールハンドラーが必要とするユーザー検索インターフェース。
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// RecipeLister はプロフィールハンドラーが必要とするレシピ一覧インターフェース。
type RecipeLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Recipe, error)
}

// UserHandler はユーザープロフィールのHTTPハンドラー。
type UserHandler struct {
	users   UserFinder
	recipes RecipeLister
	renderer
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(users UserFinder, recipes RecipeLister, views *view.Renderer) *UserHandler {
	return &UserHandler{
		users:    users,
		recipes:  recipes,
		renderer: renderer{views: views},
	}
}

// profileData はプロフィールページのテンプレートデータ。
type profileData struct {
	Owner   *model.User
	Recipes []*model.Recipe
}

// Profile は指定usernameのユーザーとそのレシピ一覧を表示する。
// GET /profile/{username}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	owner, err := h.users.FindByUsername(r.Context(), username)
	if err != nil {
		internalError(w, "failed to find user", err)
		return
	}
	if owner == nil {
		session.SetFlash(w, session.FlashDanger, "User not found.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	recipes, err := h.recipes.ListByOwner(r.Context(), owner.ID)
	if err != nil {
		internalError(w, "failed to list recipes", err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageProfile, owner.Username, profileData{
		Owner:   owner,
		Recipes: recipes,
	})
}
