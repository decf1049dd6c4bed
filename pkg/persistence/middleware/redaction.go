package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/ports"
)

// Mask replaces redacted text.
const Mask = "***"

// DefaultPIIPatterns match e-mail addresses and phone numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d\s().\-]{7,}\d`,
}

// Redactor masks every match of a set of regular expressions.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles patternStrings.
func NewRedactor(patternStrings []string) (*Redactor, error) {
	patterns := make([]*regexp.Regexp, 0, len(patternStrings))
	for _, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return &Redactor{patterns: patterns}, nil
}

// Redact replaces every match in text with Mask.
func (r *Redactor) Redact(text string) string {
	for _, p := range r.patterns {
		text = p.ReplaceAllString(text, Mask)
	}
	return text
}

// Middleware returns a store middleware that masks the stored question.
// The session handed to Save is left untouched, so the current request
// still sees the original text.
func (r *Redactor) Middleware() Middleware {
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactionMiddleware{next: next, redactor: r}
	}
}

// NewRedactionMiddleware is shorthand for NewRedactor followed by Middleware.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	r, err := NewRedactor(patternStrings)
	if err != nil {
		return nil, err
	}
	return r.Middleware(), nil
}

type redactionMiddleware struct {
	next     ports.SessionStore
	redactor *Redactor
}

func (m *redactionMiddleware) Save(ctx context.Context, session *domain.Session) error {
	if session.Question == "" || len(m.redactor.patterns) == 0 {
		return m.next.Save(ctx, session)
	}

	cloned := session.Snapshot()
	cloned.Question = m.redactor.Redact(cloned.Question)
	return m.next.Save(ctx, cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, userID string) (*domain.Session, error) {
	return m.next.Load(ctx, userID)
}

func (m *redactionMiddleware) Expire(ctx context.Context, userID string) error {
	return m.next.Expire(ctx, userID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
