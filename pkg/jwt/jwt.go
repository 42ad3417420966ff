package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más el actor y su rol.
// Role permite que el middleware RBAC decida sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	ActorID string `json:"actor_id"`
	Role    string `json:"role"` // "admin" | "supervisor" | "bodeguero"
}

// Generate genera un token JWT firmado con actorID y role.
func Generate(secret, actorID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		ActorID: actorID,
		Role:    role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Option ajusta la validación de Parse.
type Option func(*parseOptions)

type parseOptions struct {
	issuer string
	leeway time.Duration
}

// WithIssuer exige el claim iss; vacío no valida emisor.
func WithIssuer(issuer string) Option {
	return func(o *parseOptions) { o.issuer = issuer }
}

// WithLeeway tolerancia de reloj para exp/nbf/iat.
func WithLeeway(d time.Duration) Option {
	return func(o *parseOptions) { o.leeway = d }
}

// Parse valida firma HMAC, expiración y (opcional) emisor; devuelve actorID y role.
// Si el emisor no envía actor_id se usa sub.
func Parse(secret, tokenString string, opts ...Option) (actorID, role string, err error) {
	if secret == "" {
		return "", "", fmt.Errorf("jwt: secret vacío")
	}
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if o.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(o.issuer))
	}
	if o.leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(o.leeway))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, parserOpts...)
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", fmt.Errorf("jwt: token inválido")
	}
	actorID = claims.ActorID
	if actorID == "" {
		actorID = claims.Subject
	}
	if actorID == "" {
		return "", "", fmt.Errorf("jwt: sin actor_id ni sub")
	}
	return actorID, claims.Role, nil
}
