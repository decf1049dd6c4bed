package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mygenetics/reportnav/pkg/domain"
)

// Content implements ports.ContentResolver using an in-memory map.
type Content struct {
	mu     sync.RWMutex
	bodies map[domain.ContentRef]string
}

// NewContent creates a resolver serving the given bodies.
func NewContent(bodies map[domain.ContentRef]string) *Content {
	c := &Content{bodies: make(map[domain.ContentRef]string, len(bodies))}
	for k, v := range bodies {
		c.bodies[k] = v
	}
	return c
}

// Resolve returns the body for ref.
func (c *Content) Resolve(ctx context.Context, ref domain.ContentRef) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	body, ok := c.bodies[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrContentUnavailable, ref)
	}
	return body, nil
}

// Set replaces the body behind ref.
func (c *Content) Set(ref domain.ContentRef, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies[ref] = body
}

// Delete removes ref.
func (c *Content) Delete(ref domain.ContentRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bodies, ref)
}

// Refs returns all available references.
func (c *Content) Refs() []domain.ContentRef {
	c.mu.RLock()
	defer c.mu.RUnlock()

	refs := make([]domain.ContentRef, 0, len(c.bodies))
	for k := range c.bodies {
		refs = append(refs, k)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] }) // Deterministic order
	return refs
}
