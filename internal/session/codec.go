// Package session は署名付きCookieによるセッションとフラッシュメッセージを提供する。
// セッション状態はすべてCookie側に持たせるため、サーバー側のセッションストアは
// 存在せず、永続スキーマは3テーブルのまま保たれる。
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/recipeshare/internal/auth"
)

// payload はセッションCookieに格納するクレーム。
// user_idとusername以外のクレームは持たない。
type payload struct {
	UserID    string `json:"uid"`
	Username  string `json:"name"`
	ExpiresAt int64  `json:"exp"`
}

// Codec はセッション値のエンコードとHMAC-SHA256署名検証を行う。
type Codec struct {
	secret []byte
	maxAge time.Duration
}

// NewCodec はCodecを生成する。maxAgeSecondsは発行するセッションの有効期間。
func NewCodec(secret string, maxAgeSeconds int) *Codec {
	return &Codec{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
	}
}

// Encode はPrincipalを署名付きCookie値にエンコードする。
// 形式は base64url(JSON) + "." + hex(HMAC-SHA256)。
func (c *Codec) Encode(p auth.Principal) (string, error) {
	data, err := json.Marshal(payload{
		UserID:    p.ID,
		Username:  p.Username,
		ExpiresAt: time.Now().Add(c.maxAge).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode session payload: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(data)
	return encoded + "." + c.sign(encoded), nil
}

// Decode はCookie値を検証してPrincipalを返す。
// 署名不一致・形式不正・期限切れの場合はnilを返す（匿名として扱う）。
func (c *Codec) Decode(value string) *auth.Principal {
	encoded, sig, ok := strings.Cut(value, ".")
	if !ok {
		return nil
	}

	if !hmac.Equal([]byte(c.sign(encoded)), []byte(sig)) {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	if p.UserID == "" || time.Now().Unix() >= p.ExpiresAt {
		return nil
	}

	return &auth.Principal{ID: p.UserID, Username: p.Username}
}

func (c *Codec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
