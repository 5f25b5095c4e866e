package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "cfg_session"

// Cookies выдаёт и проверяет подписанную cookie с id сессии (HS256 JWT, sub = id).
type Cookies struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewCookies(secret string, ttl time.Duration, secure bool) (*Cookies, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Cookies{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}, nil
}

// SessionID достаёт id из cookie. false — cookie нет или она невалидна.
func (c *Cookies) SessionID(r *http.Request) (string, bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	id, err := c.parse(ck.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

// Ensure возвращает id текущей сессии или начинает новую.
func (c *Cookies) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := c.SessionID(r); ok {
		return id, nil
	}
	id := NewID()
	if err := c.Issue(w, id); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Cookies) Issue(w http.ResponseWriter, sessionID string) error {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(c.ttl),
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Cookies) parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid session token")
	}
	if !ValidID(claims.Subject) {
		return "", ErrInvalidSessionID
	}
	return claims.Subject, nil
}
