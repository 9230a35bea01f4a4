package model

import "time"

// Recipe はユーザーが投稿したレシピを表す。
// CreatedByは投稿者が退会済みの場合nilになる（ON DELETE SET NULL）。
// AuthorNameは投稿者usernameとのJOIN結果で、一覧・詳細取得時のみ設定される。
type Recipe struct {
	ID           int64
	Title        string
	Description  string
	Ingredients  string
	Instructions string
	ImageData    []byte
	ImageMime    string
	CreatedBy    *int64
	CreatedAt    time.Time
	AuthorName   string
}

// HasImage は画像が登録されているかを返す。
func (r *Recipe) HasImage() bool {
	return len(r.ImageData) > 0
}

// IsOwnedBy は指定ユーザーがこのレシピの投稿者かを返す。
// 投稿者が退会済み（CreatedBy == nil）の場合は常にfalse。
func (r *Recipe) IsOwnedBy(userID int64) bool {
	return r.CreatedBy != nil && *r.CreatedBy == userID
}

// ImageUpdateMode はレシピ更新時の画像の扱いを表す。
type ImageUpdateMode int

const (
	// ImageKeep は既存の画像を変更しない。
	ImageKeep ImageUpdateMode = iota
	// ImageClear は既存の画像を削除する。
	ImageClear
	// ImageReplace は画像を新しいデータで置き換える。
	ImageReplace
)

// ImageUpdate はレシピ更新時の画像操作を3値で表現する。
// 「パラメータ省略（Keep）」と「明示的な空（Clear）」は別の要求であり、
// 空バイト列をセンチネルとして使い分けることはしない。
type ImageUpdate struct {
	Mode ImageUpdateMode
	Data []byte
	Mime string
}

// KeepImage は画像を変更しないImageUpdateを返す。
func KeepImage() ImageUpdate {
	return ImageUpdate{Mode: ImageKeep}
}

// ClearImage は画像を削除するImageUpdateを返す。
func ClearImage() ImageUpdate {
	return ImageUpdate{Mode: ImageClear}
}

// ReplaceImage は画像を置き換えるImageUpdateを返す。
func ReplaceImage(data []byte, mime string) ImageUpdate {
	return ImageUpdate{Mode: ImageReplace, Data: data, Mime: mime}
}
