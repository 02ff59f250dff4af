package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Errores de verificación. El middleware distingue expirado de inválido para
// que el cliente sepa si tiene que refrescar o re-autenticar.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const typeAccess = "access"

// AccessClaims son las claims relevantes de un access token verificado.
type AccessClaims struct {
	UserID string
	Email  string
	Type   string
}

// Issuer firma y verifica access tokens HS256 con un secret compartido.
// Los access tokens son autocontenidos: su validez depende solo de la firma
// y del exp, nunca de un lookup server-side.
type Issuer struct {
	iss       string
	secret    []byte
	accessTTL time.Duration
}

func NewIssuer(iss, secret string, accessTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 720 * time.Hour // 30d
	}
	return &Issuer{iss: iss, secret: []byte(secret), accessTTL: accessTTL}
}

// AccessTTL devuelve el TTL configurado (para expires_in).
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// IssueAccess emite un access token para el usuario dado.
// Devuelve el token firmado y su expiración absoluta.
func (i *Issuer) IssueAccess(userID, email string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.accessTTL)

	claims := jwtv5.MapClaims{
		"iss":   i.iss,
		"sub":   userID,
		"email": email,
		"typ":   typeAccess,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccess valida firma, exp y tipo de un access token.
// Devuelve ErrTokenExpired si el token venció y ErrTokenInvalid para
// cualquier otro problema (firma, issuer, tipo).
func (i *Issuer) VerifyAccess(raw string) (*AccessClaims, error) {
	tok, err := jwtv5.Parse(raw,
		func(*jwtv5.Token) (any, error) { return i.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.iss),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok || !tok.Valid {
		return nil, ErrTokenInvalid
	}

	out := &AccessClaims{}
	out.UserID, _ = claims["sub"].(string)
	out.Email, _ = claims["email"].(string)
	out.Type, _ = claims["typ"].(string)

	if out.UserID == "" || out.Type != typeAccess {
		return nil, ErrTokenInvalid
	}
	return out, nil
}
