// Package jwtauth derives the session identity from signed tokens issued by
// the external credential service.
package jwtauth

import (
	"context"
	"sync"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core"
	"github.com/darasahub/darasa/core/session"
)

type Claims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// Provider verifies HS256 tokens and exposes the subject as the current
// session identity.
type Provider struct {
	secretKey []byte

	mu      sync.Mutex
	current *session.Identity
	nextSub int
	subs    map[int]func(ident session.Identity, ok bool)
}

var _ session.Provider = (*Provider)(nil) // interface compliance check

func NewProvider(conf *core.Config) *Provider {
	return &Provider{
		secretKey: conf.SecretKey,
		subs:      make(map[int]func(ident session.Identity, ok bool)),
	}
}

// SetToken verifies the token and, when valid, starts a session for its
// subject.
func (p *Provider) SetToken(token string) error {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secretKey, nil
	})
	if err != nil {
		return errors.Wrap(err, "jwtauth.SetToken")
	}
	if !parsed.Valid || claims.Subject == "" {
		return errors.New("jwtauth: invalid token")
	}

	p.apply(&session.Identity{ID: claims.Subject, Email: claims.Email})
	return nil
}

func (p *Provider) Current() (session.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return session.Identity{}, false
	}
	return *p.current, true
}

func (p *Provider) OnChange(cb func(ident session.Identity, ok bool)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = cb
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.apply(nil)
	return nil
}

func (p *Provider) apply(ident *session.Identity) {
	p.mu.Lock()
	p.current = ident
	subs := make([]func(ident session.Identity, ok bool), 0, len(p.subs))
	for _, cb := range p.subs {
		subs = append(subs, cb)
	}
	p.mu.Unlock()

	for _, cb := range subs {
		if ident == nil {
			cb(session.Identity{}, false)
		} else {
			cb(*ident, true)
		}
	}
}
