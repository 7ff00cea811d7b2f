package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"golang.org/x/crypto/hkdf"
)

const (
	sessionIssuer = "sipxrtc-demo"
	// sessionKeyInfo separates the cookie encryption key from the signing key
	sessionKeyInfo = "session cookie encryption"
)

// sessionClaims is the JWT payload of the session cookie
type sessionClaims struct {
	PhoneNumber    string             `json:"phone_number,omitempty"`
	ValidityCode   string             `json:"validity_code,omitempty"`
	Timestamp      int64              `json:"timestamp,omitempty"` // unix milliseconds
	TRTC           *domain.TRTCParams `json:"trtc_params,omitempty"`
	PreviousRoomID uint32             `json:"previous_room_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTSessionCodec implements domain.SessionCodec. The cookie is an HS256 JWT
// nested in a compact JWE (dir, A256GCM), so the client can neither read nor
// alter it.
type JWTSessionCodec struct {
	secretKey []byte
	encKey    []byte
	encrypter jose.Encrypter
	ttl       time.Duration
	now       func() time.Time
}

// NewJWTSessionCodec creates a session codec. ttl bounds how long a cookie is honoured at all.
func NewJWTSessionCodec(secretKey string, ttl time.Duration, now func() time.Time) (*JWTSessionCodec, error) {
	if secretKey == "" {
		return nil, errors.New("session secret key is required")
	}

	encKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secretKey), nil, []byte(sessionKeyInfo)), encKey); err != nil {
		return nil, fmt.Errorf("failed to derive session encryption key: %w", err)
	}
	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: encKey},
		(&jose.EncrypterOptions{}).WithContentType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init session encrypter: %w", err)
	}

	if now == nil {
		now = time.Now
	}
	return &JWTSessionCodec{
		secretKey: []byte(secretKey),
		encKey:    encKey,
		encrypter: encrypter,
		ttl:       ttl,
		now:       now,
	}, nil
}

// Encode implements domain.SessionCodec
func (c *JWTSessionCodec) Encode(session *domain.VerificationSession) (string, error) {
	now := c.now()
	claims := sessionClaims{
		PhoneNumber:    session.PhoneNumber,
		TRTC:           session.TRTC,
		PreviousRoomID: session.PreviousRoomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	if session.HasCode() {
		claims.ValidityCode = session.ValidityCode
		claims.Timestamp = session.IssuedAt.UnixMilli()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	encrypted, err := c.encrypter.Encrypt([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt session: %w", err)
	}
	return encrypted.CompactSerialize()
}

// Decode implements domain.SessionCodec
func (c *JWTSessionCodec) Decode(tokenString string) (*domain.VerificationSession, error) {
	encrypted, err := jose.ParseEncryptedCompact(tokenString,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionMissing, err)
	}
	signed, err := encrypted.Decrypt(c.encKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionMissing, err)
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(string(signed), claims, func(token *jwt.Token) (interface{}, error) {
		return c.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionMissing, err)
	}

	session := &domain.VerificationSession{
		PhoneNumber:    claims.PhoneNumber,
		TRTC:           claims.TRTC,
		PreviousRoomID: claims.PreviousRoomID,
	}
	if claims.ValidityCode != "" && claims.Timestamp > 0 {
		issued := time.UnixMilli(claims.Timestamp)
		session.ValidityCode = claims.ValidityCode
		session.IssuedAt = &issued
	}

	return session, nil
}
