package trtc

import (
	"time"

	"github.com/tencentyun/tls-sig-api-v2-golang/tencentyun"
)

// UserSigner implements domain.UserSigner with TLS signature v2
type UserSigner struct {
	sdkAppID  uint64
	secretKey string
}

// NewUserSigner creates a signer for one TRTC application
func NewUserSigner(sdkAppID uint64, secretKey string) *UserSigner {
	return &UserSigner{sdkAppID: sdkAppID, secretKey: secretKey}
}

// SDKAppID implements domain.UserSigner
func (s *UserSigner) SDKAppID() uint64 { return s.sdkAppID }

// GenUserSig implements domain.UserSigner
func (s *UserSigner) GenUserSig(userID string, expire time.Duration) (string, error) {
	return tencentyun.GenUserSig(int(s.sdkAppID), s.secretKey, userID, int(expire.Seconds()))
}
