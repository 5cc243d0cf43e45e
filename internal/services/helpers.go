package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// slugify lowercases the name, collapses everything outside [a-z0-9] into
// hyphens, and appends a random suffix to keep slugs unique.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "org"
	}

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n.Int64())
}
