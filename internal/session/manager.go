package session

import (
	"net/http"

	"github.com/hitoshi/recipeshare/internal/auth"
)

// cookieName はセッションCookieの名前。
const cookieName = "session"

// Manager はセッションCookieの発行・読み取り・破棄を行う。
type Manager struct {
	codec  *Codec
	maxAge int
	secure bool
}

// NewManager はManagerを生成する。
func NewManager(secret string, maxAgeSeconds int, secure bool) *Manager {
	return &Manager{
		codec:  NewCodec(secret, maxAgeSeconds),
		maxAge: maxAgeSeconds,
		secure: secure,
	}
}

// Issue はPrincipalをセッションCookieとして発行する。
func (m *Manager) Issue(w http.ResponseWriter, p auth.Principal) error {
	value, err := m.codec.Encode(p)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear はセッションCookieを破棄する。
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read はリクエストのセッションCookieからPrincipalを復元する。
// Cookieが無い・検証に失敗した場合はnilを返す。
func (m *Manager) Read(r *http.Request) *auth.Principal {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return m.codec.Decode(cookie.Value)
}
