package redis

import "strings"

const (
	namespace        = "evergreen"
	idempotencySpace = "idempotency"
	rateLimitSpace   = "rate_limit"
	cacheSpace       = "cache"
)

// IdempotencyKey namespaces a client supplied Idempotency-Key under scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(idempotencySpace, scope, id)
}

// CacheKey namespaces a cached read model.
func (c *Client) CacheKey(parts ...string) string {
	return buildKey(append([]string{cacheSpace}, parts...)...)
}

// buildKey joins non-blank parts onto the namespace with ":".
func buildKey(parts ...string) string {
	key := namespace
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			key += ":" + part
		}
	}
	return key
}
