package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/recipeshare/internal/config"
)

// PasswordVerifier はパスワードの保存表現と照合方式を抽象化する。
// 保存形式の互換性は方式ごとに閉じる（plaintextで登録したユーザーは
// plaintextでのみ照合できる）。
type PasswordVerifier interface {
	// Hash は保存用のパスワード表現を返す。
	Hash(plain string) (string, error)
	// Verify は保存値と入力値を照合する。
	Verify(stored, plain string) bool
}

// PlaintextVerifier は保存された平文との直接比較を行う。
// 元システムの挙動をそのまま保持した既定方式であり、
// ハッシュ化が必要な環境ではPASSWORD_SCHEME=bcryptで差し替える。
type PlaintextVerifier struct{}

// Hash は入力をそのまま返す。
func (PlaintextVerifier) Hash(plain string) (string, error) {
	return plain, nil
}

// Verify は保存値と入力値の等価比較を行う。
func (PlaintextVerifier) Verify(stored, plain string) bool {
	return stored == plain
}

// BcryptVerifier はbcryptハッシュで保存・照合する。
type BcryptVerifier struct{}

// Hash はbcryptハッシュを生成する。
func (BcryptVerifier) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Verify は保存されたハッシュと入力値を照合する。
func (BcryptVerifier) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// NewVerifier は設定されたパスワード照合方式に対応するPasswordVerifierを返す。
func NewVerifier(scheme string) (PasswordVerifier, error) {
	switch scheme {
	case config.PasswordSchemePlaintext:
		return PlaintextVerifier{}, nil
	case config.PasswordSchemeBcrypt:
		return BcryptVerifier{}, nil
	default:
		return nil, fmt.Errorf("unsupported password scheme: %q", scheme)
	}
}

// compile-time interface checks
var (
	_ PasswordVerifier = PlaintextVerifier{}
	_ PasswordVerifier = BcryptVerifier{}
)
