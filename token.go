package castlegate

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenCodecImpl implements the TokenCodec interface
type TokenCodecImpl struct {
	signingSecret []byte
	ttl           time.Duration
	logger        Logger
}

// NewTokenCodec creates a codec bound to the process-wide signing secret.
// A zero ttl issues tokens without an expiry claim.
func NewTokenCodec(signingSecret []byte, ttl time.Duration, logger Logger) TokenCodec {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenCodecImpl{
		signingSecret: signingSecret,
		ttl:           ttl,
		logger:        logger,
	}
}

// Issue signs a token carrying subjectID and, when a ttl is configured, an
// expiry.
func (tc *TokenCodecImpl) Issue(subjectID string) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:  subjectID,
		IssuedAt: jwt.NewNumericDate(now),
	}

	if tc.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(tc.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(tc.signingSecret)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Verify parses and validates a token string, returning its subject ID.
// Fails with ErrTokenExpired past expiry, ErrTokenMalformed for anything
// else wrong with the signature or structure.
func (tc *TokenCodecImpl) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("TokenCodec verify encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		tc.logger.Error("TokenCodec verify could not decode claims")
		return "", ErrTokenMalformed
	}

	return claims.Subject, nil
}
