package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrResetTokenExpired = errors.New("reset token expired")
	ErrResetTokenInvalid = errors.New("reset token invalid")
)

const ResetTokenTTL = 24 * time.Hour

type ResetClaims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateResetToken 签发密码重置 token，通过邮件链接下发
func GenerateResetToken(secret []byte, userID uint64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ResetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenTTL)),
			Subject:   "password-reset",
		},
	})
	return token.SignedString(secret)
}

// ParseResetToken 校验并解出重置 token 里的用户
func ParseResetToken(secret []byte, tokenStr string) (uint64, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ResetClaims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrResetTokenExpired
		}
		return 0, ErrResetTokenInvalid
	}
	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid || claims.Subject != "password-reset" {
		return 0, ErrResetTokenInvalid
	}
	return claims.UserID, nil
}
