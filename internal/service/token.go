package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims 服务访问令牌声明
type TokenClaims struct {
	TenantID uint   `json:"tenant_id"`
	Subject  string `json:"subject"`
	jwt.RegisteredClaims
}

// IssueServiceToken 签发管理接口访问令牌
func IssueServiceToken(secretKey string, tenantID uint, subject string, expireHours int) (string, error) {
	if strings.TrimSpace(secretKey) == "" {
		return "", errors.New("jwt secret not configured")
	}
	if expireHours <= 0 {
		expireHours = 24
	}

	now := time.Now()
	claims := TokenClaims{
		TenantID: tenantID,
		Subject:  subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// ParseServiceToken 解析并校验访问令牌
func ParseServiceToken(secretKey, tokenString string) (*TokenClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
