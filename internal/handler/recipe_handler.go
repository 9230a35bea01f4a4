package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hitoshi/recipeshare/internal/middleware"
	"github.com/hitoshi/recipeshare/internal/model"
	"github.com/hitoshi/recipeshare/internal/recipe"
	"github.com/hitoshi/recipeshare/internal/session"
	"github.com/hitoshi/recipeshare/internal/view"
)

// RecipeServiceInterface はレシピハンドラーが必要とするサービスインターフェース。
type RecipeServiceInterface interface {
	Create(ctx context.Context, ownerID int64, input recipe.Input, imageData []byte, imageMime string) (int64, error)
	Get(ctx context.Context, id int64) (*model.Recipe, error)
	List(ctx context.Context) ([]*model.Recipe, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Recipe, error)
	Update(ctx context.Context, userID, recipeID int64, input recipe.Input, image model.ImageUpdate) error
	Delete(ctx context.Context, userID, recipeID int64) error
	Comments(ctx context.Context, recipeID int64) ([]*model.Comment, error)
	AddComment(ctx context.Context, userID, recipeID int64, content string) (int64, error)
}

// RecipeHandler はレシピCRUDとコメント投稿のHTTPハンドラー。
type RecipeHandler struct {
	service       RecipeServiceInterface
	maxUploadSize int64
	renderer
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(service RecipeServiceInterface, views *view.Renderer, maxUploadSize int64) *RecipeHandler {
	return &RecipeHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		renderer:      renderer{views: views},
	}
}

// indexData はレシピ一覧ページのテンプレートデータ。
type indexData struct {
	Recipes []*model.Recipe
}

// detailData はレシピ詳細ページのテンプレートデータ。
type detailData struct {
	Recipe   *model.Recipe
	Comments []*model.Comment
	IsOwner  bool
}

// formData はレシピ作成フォームのテンプレートデータ。
type formData struct {
	Form recipe.Input
}

// editData はレシピ編集フォームのテンプレートデータ。
type editData struct {
	Recipe *model.Recipe
}

// List は全レシピを新しい順に表示する。
// GET /
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.List(r.Context())
	if err != nil {
		internalError(w, "failed to list recipes", err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageIndex, "", indexData{Recipes: recipes})
}

// Detail はレシピ詳細とコメント一覧を表示する。
// GET /recipes/{id}
func (h *RecipeHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := recipeIDFromURL(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		internalError(w, "failed to get recipe", err)
		return
	}
	if rec == nil {
		session.SetFlash(w, session.FlashDanger, "Recipe not found.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	comments, err := h.service.Comments(r.Context(), id)
	if err != nil {
		internalError(w, "failed to list comments", err)
		return
	}

	isOwner := false
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		if userID, err := p.UserID(); err == nil {
			isOwner = rec.IsOwnedBy(userID)
		}
	}

	h.render(w, r, http.StatusOK, view.PageRecipeDetail, rec.Title, detailData{
		Recipe:   rec,
		Comments: comments,
		IsOwner:  isOwner,
	})
}

// PostComment はレシピにコメントを追加し、同じページへリダイレクトする。
// POST /recipes/{id}
func (h *RecipeHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	id, err := recipeIDFromURL(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	detailURL := fmt.Sprintf("/recipes/%d", id)

	_, err = h.service.AddComment(r.Context(), userID, id, r.PostFormValue("comment"))
	switch {
	case errors.Is(err, model.ErrMissingRequired):
		session.SetFlash(w, session.FlashDanger, "Comment cannot be empty.")
		http.Redirect(w, r, detailURL, http.StatusSeeOther)
		return
	case errors.Is(err, model.ErrNotFound):
		session.SetFlash(w, session.FlashDanger, "Recipe not found.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case err != nil:
		internalError(w, "failed to post comment", err)
		return
	}

	session.SetFlash(w, session.FlashSuccess, "Comment posted!")
	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

// CreateForm はレシピ作成フォームを表示する。
// GET /recipes/create
func (h *RecipeHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageCreateRecipe, "New Recipe", formData{})
}

// Create はレシピを作成してホームへリダイレクトする。
// POST /recipes/create
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	input, imageData, imageMime, err := h.parseRecipeForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	_, err = h.service.Create(r.Context(), userID, input, imageData, imageMime)
	if err != nil {
		if errors.Is(err, model.ErrMissingRequired) {
			h.renderWithFlash(w, r, http.StatusOK, view.PageCreateRecipe, "New Recipe", formData{Form: input},
				&session.Flash{Category: session.FlashDanger, Message: "Title and instructions are required."})
			return
		}
		internalError(w, "failed to create recipe", err)
		return
	}

	session.SetFlash(w, session.FlashSuccess, "Recipe published successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditForm はレシピ編集フォームを表示する。投稿者以外は詳細へ戻す。
// GET /recipes/{id}/edit
func (h *RecipeHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := recipeIDFromURL(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		internalError(w, "failed to get recipe", err)
		return
	}
	if rec == nil {
		session.SetFlash(w, session.FlashDanger, "Recipe not found.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if !rec.IsOwnedBy(userID) {
		session.SetFlash(w, session.FlashDanger, "You are not allowed to edit this recipe.")
		http.Redirect(w, r, fmt.Sprintf("/recipes/%d", id), http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, view.PageEditRecipe, "Edit Recipe", editData{Recipe: rec})
}

// Edit はレシピを更新して詳細ページへリダイレクトする。
// 画像はremove_imageチェック（削除）→新規アップロード（置換）→どちらも無し（維持）
// の優先順で3値に写す。
// POST /recipes/{id}/edit
func (h *RecipeHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := recipeIDFromURL(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	input, imageData, imageMime, err := h.parseRecipeForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	image := model.KeepImage()
	if r.PostFormValue("remove_image") != "" {
		image = model.ClearImage()
	} else if imageData != nil {
		image = model.ReplaceImage(imageData, imageMime)
	}

	detailURL := fmt.Sprintf("/recipes/%d", id)

	err = h.service.Update(r.Context(), userID, id, input, image)
	switch {
	case errors.Is(err, model.ErrNotFound):
		session.SetFlash(w, session.FlashDanger, "Recipe not found.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case errors.Is(err, model.ErrForbidden):
		session.SetFlash(w, session.FlashDanger, "You are not allowed to edit this recipe.")
		http.Redirect(w, r, detailURL, http.StatusSeeOther)
		return
	case errors.Is(err, model.ErrMissingRequired):
		session.SetFlash(w, session.FlashDanger, "Title and instructions are required.")
		http.Redirect(w, r, detailURL+"/edit", http.StatusSeeOther)
		return
	case err != nil:
		internalError(w, "failed to update recipe", err)
		return
	}

	session.SetFlash(w, session.FlashSuccess, "Recipe updated successfully!")
	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

// Delete はレシピを削除してホームへリダイレクトする。
// 投稿者以外の要求は403で拒否する。
// POST /recipes/{id}/delete
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := recipeIDFromURL(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	err = h.service.Delete(r.Context(), userID, id)
	switch {
	case errors.Is(err, model.ErrNotFound):
		session.SetFlash(w, session.FlashDanger, "Recipe not found.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case errors.Is(err, model.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	case err != nil:
		internalError(w, "failed to delete recipe", err)
		return
	}

	session.SetFlash(w, session.FlashSuccess, "Recipe deleted successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Image はレシピ画像を保存されたContent-Typeでそのまま返す。
// レシピ不在・画像未登録はどちらも404。
// GET /recipes/{id}/img
func (h *RecipeHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := recipeIDFromURL(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		internalError(w, "failed to get recipe", err)
		return
	}
	if rec == nil || !rec.HasImage() {
		http.NotFound(w, r)
		return
	}

	mime := rec.ImageMime
	if mime == "" {
		mime = "application/octet-stream"
	}

	w.Header().Set("Content-Type", mime)
	_, _ = w.Write(rec.ImageData)
}

// parseRecipeForm はマルチパートフォームからテキスト項目と画像を読み取る。
// 画像はリクエスト内で全読みする（ストリーミングはしない）。
// 画像が添付されていない場合はimageData == nilを返す。
// パートにContent-Typeがない場合は先頭バイトからMIMEを推定する。
func (h *RecipeHandler) parseRecipeForm(r *http.Request) (input recipe.Input, imageData []byte, imageMime string, err error) {
	if err = r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return recipe.Input{}, nil, "", err
	}

	input = recipe.Input{
		Title:        r.PostFormValue("title"),
		Description:  r.PostFormValue("description"),
		Ingredients:  r.PostFormValue("ingredients"),
		Instructions: r.PostFormValue("instructions"),
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return input, nil, "", nil
	}
	if err != nil {
		return recipe.Input{}, nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return recipe.Input{}, nil, "", err
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" && len(data) > 0 {
		mime = http.DetectContentType(data)
	}

	return input, data, mime, nil
}

// currentUserID はコンテキストの認証主体からユーザーIDを取り出す。
// RequireAuthミドルウェア通過後のハンドラーでのみ使用する。
func currentUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}

	userID, err := p.UserID()
	if err != nil {
		internalError(w, "invalid principal ID", err)
		return 0, false
	}

	return userID, true
}
