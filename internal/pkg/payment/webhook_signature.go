package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// VerifySquareWebhookSignature checks the x-square-hmacsha256-signature
// header: base64(HMAC-SHA256(signature key, notification URL + raw body)).
func VerifySquareWebhookSignature(payload []byte, notificationURL, signatureHeader, signatureKey string) bool {
	sig := strings.TrimSpace(signatureHeader)
	key := strings.TrimSpace(signatureKey)
	if sig == "" || key == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(notificationURL))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(sig))
}
