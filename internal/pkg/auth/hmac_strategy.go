package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

const tokenSeparator = "|"

// HMACStrategy signs "userID|role|expiry" payloads with HMAC-SHA256. Tokens
// are URL-safe so they fit both the Authorization header and the cookie.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: now}
}

// IssueToken generates signed auth token for the claims.
func (s *HMACStrategy) IssueToken(claims Claims) (string, error) {
	if claims.UserID <= 0 {
		return "", fmt.Errorf("issue token: invalid user id %d", claims.UserID)
	}
	role := claims.Role
	if role == "" {
		role = model.RoleClient
	}
	expires := s.now().Add(s.ttl).Unix()
	payload := strings.Join([]string{strconv.FormatInt(claims.UserID, 10), string(role), strconv.FormatInt(expires, 10)}, tokenSeparator)
	token := payload + tokenSeparator + s.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates token and returns its claims.
func (s *HMACStrategy) ParseToken(token string) (Claims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	parts := strings.Split(string(raw), tokenSeparator)
	if len(parts) != 4 {
		return Claims{}, ErrInvalidToken
	}

	payload := strings.Join(parts[:3], tokenSeparator)
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[3])) {
		return Claims{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, ErrInvalidToken
	}

	role := model.Role(parts[1])
	if role != model.RoleClient && role != model.RoleAdmin {
		return Claims{}, ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if time.Unix(expires, 0).Before(s.now()) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID, Role: role}, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
