package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fentz26/planner/internal/models"
)

const viewerKey = "planner.viewer"

// Viewer is the identity carried by a session cookie.
type Viewer struct {
	UserID int64
	Name   string
	id     string
	expiry time.Time
}

type sessionClaims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// unlockClaims mark a client that passed the app lock. They carry no identity.
type unlockClaims struct {
	Unlocked bool `json:"unlocked"`
	jwt.RegisteredClaims
}

// sessions issues and verifies HS256 session tokens. Signed-out tokens are
// remembered by id until they would have expired anyway.
type sessions struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func newSessions(secret []byte, ttl time.Duration) *sessions {
	return &sessions{
		secret:  secret,
		ttl:     ttl,
		parser:  jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (s *sessions) issue(u models.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := sessionClaims{
		UserID: u.ID,
		Name:   u.FullName(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, exp, nil
}

func (s *sessions) parse(raw string) (Viewer, error) {
	if raw == "" {
		return Viewer{}, ErrNoSession
	}
	var claims sessionClaims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Viewer{}, err
	}
	if claims.UserID == 0 {
		return Viewer{}, errors.New("session without user")
	}

	s.mu.Lock()
	_, gone := s.revoked[claims.ID]
	s.mu.Unlock()
	if gone {
		return Viewer{}, ErrSessionRevoked
	}

	v := Viewer{UserID: claims.UserID, Name: claims.Name, id: claims.ID}
	if claims.ExpiresAt != nil {
		v.expiry = claims.ExpiresAt.Time
	}
	return v, nil
}

func (s *sessions) issueUnlock() (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := unlockClaims{
		Unlocked: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign unlock pass: %w", err)
	}
	return token, exp, nil
}

// parseUnlock verifies an unlock pass. The returned Viewer only carries the
// token id and expiry, for revocation.
func (s *sessions) parseUnlock(raw string) (Viewer, error) {
	if raw == "" {
		return Viewer{}, ErrNoSession
	}
	var claims unlockClaims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Viewer{}, err
	}
	if !claims.Unlocked {
		return Viewer{}, errors.New("not an unlock pass")
	}
	s.mu.Lock()
	_, gone := s.revoked[claims.ID]
	s.mu.Unlock()
	if gone {
		return Viewer{}, ErrSessionRevoked
	}
	v := Viewer{id: claims.ID}
	if claims.ExpiresAt != nil {
		v.expiry = claims.ExpiresAt.Time
	}
	return v, nil
}

func (s *sessions) revoke(v Viewer) {
	if v.id == "" {
		return
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[v.id] = v.expiry
}

func (s *sessions) cookie(token string, exp time.Time) *http.Cookie {
	return namedCookie(models.SessionCookieName, token, exp)
}

func namedCookie(name, token string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
}

// loadSession attaches the viewer to the context when the request carries
// a valid session cookie. Requests without one pass through anonymously.
func (s *Server) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ck, err := c.Cookie(models.SessionCookieName)
		if err == nil {
			v, perr := s.sessions.parse(ck.Value)
			if perr == nil {
				c.Set(viewerKey, v)
			} else {
				s.log.WithError(perr).Debug("ignoring session cookie")
			}
		}
		return next(c)
	}
}

func viewerFrom(c echo.Context) (Viewer, bool) {
	v, ok := c.Get(viewerKey).(Viewer)
	return v, ok
}
