package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/hitoshi/recipeshare/internal/model"
	"github.com/hitoshi/recipeshare/internal/recipe"
)

func ownedBy(id, ownerID int64) *model.Recipe {
	return &model.Recipe{
		ID:           id,
		Title:        "Curry",
		Instructions: "Simmer.",
		CreatedBy:    &ownerID,
		AuthorName:   "alice",
	}
}

// multipartForm はレシピフォームのmultipartリクエストボディを構築する。
// imageがnilでない場合はimage/pngのファイルパートを添付する。
func multipartForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("WriteField(%s) failed: %v", name, err)
		}
	}

	if image != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="photo.png"`)
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("CreatePart failed: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("part write failed: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("multipart close failed: %v", err)
	}
	return &buf, w.FormDataContentType()
}

// --- 一覧・詳細 ---

// レシピ一覧が表示されることを検証
func TestRecipeHandler_List_RendersRecipes(t *testing.T) {
	deps, _, recipeSvc, _, _ := testDeps(t)
	recipeSvc.listFn = func(_ context.Context) ([]*model.Recipe, error) {
		return []*model.Recipe{ownedBy(1, 7)}, nil
	}
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Curry") {
		t.Error("expected recipe title in output")
	}
}

// レシピ詳細がコメントつきで表示されることを検証
func TestRecipeHandler_Detail_RendersRecipeAndComments(t *testing.T) {
	deps, _, recipeSvc, _, _ := testDeps(t)
	recipeSvc.getFn = func(_ context.Context, id int64) (*model.Recipe, error) {
		return ownedBy(id, 7), nil
	}
	recipeSvc.commentsFn = func(_ context.Context, _ int64) ([]*model.Comment, error) {
		return []*model.Comment{{ID: 1, Content: "Looks great!", AuthorName: "bob"}}, nil
	}
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Curry") {
		t.Error("expected recipe title in output")
	}
	if !strings.Contains(body, "Looks great!") {
		t.Error("expected comment in output")
	}
	// 匿名には編集・削除ボタンを出さない
	if strings.Contains(body, "/recipes/10/edit") {
		t.Error("anonymous view should not show edit action")
	}
}

// 投稿者本人の詳細ページには編集・削除ボタンが出ることを検証
func TestRecipeHandler_Detail_OwnerSeesActions(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal() // ID 7
	recipeSvc.getFn = func(_ context.Context, id int64) (*model.Recipe, error) {
		return ownedBy(id, 7), nil
	}
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/10", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "/recipes/10/edit") {
		t.Error("owner view should show edit action")
	}
	if !strings.Contains(body, "/recipes/10/delete") {
		t.Error("owner view should show delete action")
	}
}

// 存在しないレシピの詳細はホームへリダイレクトされることを検証
func TestRecipeHandler_Detail_NotFound_RedirectsHome(t *testing.T) {
	deps, _, _, _, _ := testDeps(t)
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/404", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

// 数値でないIDはルーティング段階で404になることを検証
func TestRecipeHandler_Detail_NonNumericID_Returns404(t *testing.T) {
	deps, _, _, _, _ := testDeps(t)
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/abc", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// --- 作成 ---

// 未認証の作成フォームはログインへリダイレクトされることを検証
func TestRecipeHandler_CreateForm_Anonymous_RedirectsToLogin(t *testing.T) {
	deps, _, _, _, _ := testDeps(t)
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/create", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Frecipes%2Fcreate" {
		t.Errorf("Location = %q, want login redirect with next", loc)
	}
}

// 画像つきのレシピ作成が成功することを検証
// Content-Typeのないファイルパートは先頭バイトからMIMEが推定されることを検証
func TestRecipeHandler_Create_ImageWithoutContentType_SniffsMime(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()

	var gotMime string
	recipeSvc.createFn = func(_ context.Context, _ int64, _ recipe.Input, _ []byte, imageMime string) (int64, error) {
		gotMime = imageMime
		return 10, nil
	}
	router := NewRouter(deps)

	// Content-Typeヘッダーを持たないファイルパートを手組みする
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range map[string]string{
		"title":        "Curry",
		"instructions": "Simmer.",
	} {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("WriteField(%s) failed: %v", name, err)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}
	// PNGシグネチャ
	if _, err := part.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}); err != nil {
		t.Fatalf("part write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart close failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/recipes/create", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if gotMime != "image/png" {
		t.Errorf("mime = %q, want image/png (sniffed)", gotMime)
	}
}

func TestRecipeHandler_Create_WithImage_Succeeds(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()

	var gotInput recipe.Input
	var gotImage []byte
	var gotMime string
	recipeSvc.createFn = func(_ context.Context, ownerID int64, input recipe.Input, imageData []byte, imageMime string) (int64, error) {
		if ownerID != 7 {
			t.Errorf("ownerID = %d, want 7", ownerID)
		}
		gotInput = input
		gotImage = imageData
		gotMime = imageMime
		return 10, nil
	}
	router := NewRouter(deps)

	body, contentType := multipartForm(t, map[string]string{
		"title":        "Curry",
		"description":  "Spicy",
		"ingredients":  "onion",
		"instructions": "Simmer.",
	}, []byte{0x89, 0x50, 0x4E, 0x47})

	req := httptest.NewRequest(http.MethodPost, "/recipes/create", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if gotInput.Title != "Curry" || gotInput.Instructions != "Simmer." {
		t.Errorf("input = %+v, want title and instructions", gotInput)
	}
	if len(gotImage) != 4 {
		t.Errorf("len(image) = %d, want 4", len(gotImage))
	}
	if gotMime != "image/png" {
		t.Errorf("mime = %q, want image/png", gotMime)
	}
}

// 画像なしの作成はimageData==nilでサービスに渡ることを検証
func TestRecipeHandler_Create_WithoutImage_PassesNilImage(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()

	var gotImage []byte = []byte{0xFF}
	recipeSvc.createFn = func(_ context.Context, _ int64, _ recipe.Input, imageData []byte, _ string) (int64, error) {
		gotImage = imageData
		return 10, nil
	}
	router := NewRouter(deps)

	body, contentType := multipartForm(t, map[string]string{
		"title":        "Curry",
		"instructions": "Simmer.",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/recipes/create", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if gotImage != nil {
		t.Errorf("image = %v, want nil", gotImage)
	}
}

// 必須項目不足はフォーム再表示と入力値の保持を検証
func TestRecipeHandler_Create_MissingRequired_RendersFormWithValues(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()
	recipeSvc.createFn = func(_ context.Context, _ int64, _ recipe.Input, _ []byte, _ string) (int64, error) {
		return 0, model.ErrMissingRequired
	}
	router := NewRouter(deps)

	body, contentType := multipartForm(t, map[string]string{
		"title":       "",
		"description": "Still here",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/recipes/create", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (re-render)", rec.Code)
	}
	respBody := rec.Body.String()
	if !strings.Contains(respBody, "Title and instructions are required.") {
		t.Error("expected validation message in output")
	}
	if !strings.Contains(respBody, "Still here") {
		t.Error("expected submitted description to be preserved in form")
	}
}

// --- コメント ---

// コメント投稿が成功し詳細ページへ戻ることを検証
func TestRecipeHandler_PostComment_Succeeds(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()

	var gotContent string
	recipeSvc.addCommentFn = func(_ context.Context, userID, recipeID int64, content string) (int64, error) {
		if userID != 7 || recipeID != 10 {
			t.Errorf("AddComment(%d, %d), want (7, 10)", userID, recipeID)
		}
		gotContent = content
		return 5, nil
	}
	router := NewRouter(deps)

	rec := postForm(router, "/recipes/10", url.Values{"comment": {"Looks great!"}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/recipes/10" {
		t.Errorf("Location = %q, want /recipes/10", loc)
	}
	if gotContent != "Looks great!" {
		t.Errorf("content = %q, want %q", gotContent, "Looks great!")
	}
}

// 未認証のコメント投稿はログインへリダイレクトされることを検証
func TestRecipeHandler_PostComment_Anonymous_RedirectsToLogin(t *testing.T) {
	deps, _, _, _, _ := testDeps(t)
	router := NewRouter(deps)

	rec := postForm(router, "/recipes/10", url.Values{"comment": {"Hi"}})

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Errorf("Location = %q, want login redirect", loc)
	}
}

// 空コメントはフラッシュつきで詳細へ戻ることを検証
func TestRecipeHandler_PostComment_Empty_RedirectsWithFlash(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()
	recipeSvc.addCommentFn = func(_ context.Context, _, _ int64, _ string) (int64, error) {
		return 0, model.ErrMissingRequired
	}
	router := NewRouter(deps)

	rec := postForm(router, "/recipes/10", url.Values{"comment": {"  "}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/recipes/10" {
		t.Errorf("Location = %q, want /recipes/10", loc)
	}
}

// 存在しないレシピへのコメントはホームへ戻ることを検証
func TestRecipeHandler_PostComment_MissingRecipe_RedirectsHome(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()
	recipeSvc.addCommentFn = func(_ context.Context, _, _ int64, _ string) (int64, error) {
		return 0, model.ErrNotFound
	}
	router := NewRouter(deps)

	rec := postForm(router, "/recipes/404", url.Values{"comment": {"Hi"}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

// --- 編集 ---

// remove_imageチェックで画像削除が要求されることを検証
func TestRecipeHandler_Edit_RemoveImage_RequestsClear(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()

	var gotImage model.ImageUpdate
	recipeSvc.updateFn = func(_ context.Context, _, _ int64, _ recipe.Input, image model.ImageUpdate) error {
		gotImage = image
		return nil
	}
	router := NewRouter(deps)

	body, contentType := multipartForm(t, map[string]string{
		"title":        "Curry",
		"instructions": "Simmer.",
		"remove_image": "on",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/recipes/10/edit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if gotImage.Mode != model.ImageClear {
		t.Errorf("image mode = %v, want ImageClear", gotImage.Mode)
	}
}

// 新規アップロードで画像置換が要求されることを検証
func TestRecipeHandler_Edit_NewUpload_RequestsReplace(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()

	var gotImage model.ImageUpdate
	recipeSvc.updateFn = func(_ context.Context, _, _ int64, _ recipe.Input, image model.ImageUpdate) error {
		gotImage = image
		return nil
	}
	router := NewRouter(deps)

	body, contentType := multipartForm(t, map[string]string{
		"title":        "Curry",
		"instructions": "Simmer.",
	}, []byte{0x89, 0x50})

	req := httptest.NewRequest(http.MethodPost, "/recipes/10/edit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if gotImage.Mode != model.ImageReplace {
		t.Errorf("image mode = %v, want ImageReplace", gotImage.Mode)
	}
	if gotImage.Mime != "image/png" {
		t.Errorf("image mime = %q, want image/png", gotImage.Mime)
	}
}

// フォーム未指定時は画像維持が要求されることを検証
func TestRecipeHandler_Edit_NoImageChange_RequestsKeep(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()

	gotImage := model.ReplaceImage([]byte{0x01}, "sentinel")
	recipeSvc.updateFn = func(_ context.Context, _, _ int64, _ recipe.Input, image model.ImageUpdate) error {
		gotImage = image
		return nil
	}
	router := NewRouter(deps)

	body, contentType := multipartForm(t, map[string]string{
		"title":        "Curry",
		"instructions": "Simmer.",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/recipes/10/edit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if gotImage.Mode != model.ImageKeep {
		t.Errorf("image mode = %v, want ImageKeep", gotImage.Mode)
	}
}

// 投稿者以外の編集は詳細へ戻されることを検証
func TestRecipeHandler_Edit_NonOwner_RedirectsToDetail(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()
	recipeSvc.updateFn = func(_ context.Context, _, _ int64, _ recipe.Input, _ model.ImageUpdate) error {
		return model.ErrForbidden
	}
	router := NewRouter(deps)

	body, contentType := multipartForm(t, map[string]string{
		"title":        "Hijack",
		"instructions": "X.",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/recipes/10/edit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/recipes/10" {
		t.Errorf("Location = %q, want /recipes/10", loc)
	}
}

// 投稿者以外の編集フォーム表示は詳細へ戻されることを検証
func TestRecipeHandler_EditForm_NonOwner_RedirectsToDetail(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal() // ID 7
	recipeSvc.getFn = func(_ context.Context, id int64) (*model.Recipe, error) {
		return ownedBy(id, 99), nil
	}
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/10/edit", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/recipes/10" {
		t.Errorf("Location = %q, want /recipes/10", loc)
	}
}

// --- 削除 ---

// 投稿者本人の削除が成功することを検証
func TestRecipeHandler_Delete_ByOwner_Succeeds(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()

	called := false
	recipeSvc.deleteFn = func(_ context.Context, userID, recipeID int64) error {
		if userID != 7 || recipeID != 10 {
			t.Errorf("Delete(%d, %d), want (7, 10)", userID, recipeID)
		}
		called = true
		return nil
	}
	router := NewRouter(deps)

	rec := postForm(router, "/recipes/10/delete", url.Values{})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if !called {
		t.Error("expected service Delete to be called")
	}
}

// 投稿者以外の削除は403を返すことを検証
func TestRecipeHandler_Delete_NonOwner_Returns403(t *testing.T) {
	deps, _, recipeSvc, _, sessions := testDeps(t)
	sessions.principal = alicePrincipal()
	recipeSvc.deleteFn = func(_ context.Context, _, _ int64) error {
		return model.ErrForbidden
	}
	router := NewRouter(deps)

	rec := postForm(router, "/recipes/10/delete", url.Values{})

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

// --- 画像 ---

// 画像が保存されたContent-Typeで返ることを検証
func TestRecipeHandler_Image_ServesStoredImage(t *testing.T) {
	deps, _, recipeSvc, _, _ := testDeps(t)
	recipeSvc.getFn = func(_ context.Context, id int64) (*model.Recipe, error) {
		rec := ownedBy(id, 7)
		rec.ImageData = []byte{0x89, 0x50, 0x4E, 0x47}
		rec.ImageMime = "image/png"
		return rec, nil
	}
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/10/img", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if rec.Body.Len() != 4 {
		t.Errorf("body length = %d, want 4", rec.Body.Len())
	}
}

// 画像未登録のレシピは404を返すことを検証
func TestRecipeHandler_Image_NoImage_Returns404(t *testing.T) {
	deps, _, recipeSvc, _, _ := testDeps(t)
	recipeSvc.getFn = func(_ context.Context, id int64) (*model.Recipe, error) {
		return ownedBy(id, 7), nil
	}
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/10/img", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// MIME未保存の画像はoctet-streamで返ることを検証
func TestRecipeHandler_Image_MissingMime_FallsBackToOctetStream(t *testing.T) {
	deps, _, recipeSvc, _, _ := testDeps(t)
	recipeSvc.getFn = func(_ context.Context, id int64) (*model.Recipe, error) {
		rec := ownedBy(id, 7)
		rec.ImageData = []byte{0x01}
		return rec, nil
	}
	router := NewRouter(deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/10/img", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q, want application/octet-stream", ct)
	}
}
