package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// SIPX open API authentication.
//
// Every request carries three query parameters:
//
//	api_key   = the key issued by SIPX
//	expire_at = unix timestamp (seconds) after which the request is rejected
//	signature = base64url_nopad(hmac_sha256(api_secret, api_key || decimal(expire_at)))
//
// SIPX recomputes the signature with its copy of the secret.

// SignSIPX computes the signature for one key/expiry pair
func SignSIPX(apiKey, apiSecret string, expireAt int64) string {
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(apiKey))
	mac.Write([]byte(strconv.FormatInt(expireAt, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// NewSIPXAuthParams builds fresh auth params expiring ttl after now
func NewSIPXAuthParams(apiKey, apiSecret string, now time.Time, ttl time.Duration) *domain.SIPXAuthParams {
	expireAt := now.Add(ttl).Unix()
	return &domain.SIPXAuthParams{
		APIKey:    apiKey,
		ExpireAt:  expireAt,
		Signature: SignSIPX(apiKey, apiSecret, expireAt),
	}
}
