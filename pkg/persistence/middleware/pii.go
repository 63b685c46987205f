package middleware

import (
	"context"
	"regexp"

	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the values of states whose
// name matches one of the patterns. Masking happens on Save and is one-way: a
// restored snapshot carries the mask, not the original value.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, name string, snap domain.Snapshot) error {
	// 1. Clone to avoid side effects on the snapshot held by the caller.
	cloned := snap.Clone()

	// 2. Mask PII
	for k := range cloned.States {
		for _, p := range m.patterns {
			if p.MatchString(k) {
				cloned.States[k] = "***"
				break
			}
		}
	}

	return m.next.Save(ctx, name, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	return m.next.Load(ctx, name)
}

func (m *piiMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
