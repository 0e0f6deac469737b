package minipress

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashing parameters shared with every MetaWeblog client setup
// guide: PBKDF2-HMAC-SHA1, 1000 iterations, 256-bit output.
const (
	pbkdf2Iterations = 1000
	pbkdf2KeyLen     = 32
)

// checkCredentials verifies the configured admin username and password
// hash. Used by both the web login and every MetaWeblog call.
func (a *App) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Config.AdminUser)) == 1
	passOK := verifyHashedPassword(password, a.Config.AdminSalt, a.Config.AdminPasswordHash)
	return userOK && passOK
}

// HashPassword derives the hex hash stored in configuration from a
// plaintext password and salt. Exposed so site operators can generate
// their config value.
func HashPassword(password, salt string) string {
	return hex.EncodeToString(
		pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha1.New))
}

func verifyHashedPassword(password, salt, wantHex string) bool {
	want, err := hex.DecodeString(strings.ToLower(wantHex))
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha1.New)
	return hmac.Equal(got, want)
}
