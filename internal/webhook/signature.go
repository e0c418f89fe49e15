package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Sign returns the HMAC-SHA256 of "<timestamp>.<payload>" in the
// X-Chamada-Signature format.
func Sign(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature and rejects timestamps further than tolerance
// from now. A zero tolerance skips the age check.
func Verify(secret string, timestamp int64, payload []byte, signature string, tolerance time.Duration) bool {
	if tolerance > 0 {
		age := time.Since(time.Unix(timestamp, 0))
		if age < 0 {
			age = -age
		}
		if age > tolerance {
			return false
		}
	}
	return hmac.Equal([]byte(signature), []byte(Sign(secret, timestamp, payload)))
}
