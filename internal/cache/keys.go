package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QuerySetKey keys a generated query set by its semantic inputs. Jobs sharing
// the same (industry, brand, count) share the cached set.
func QuerySetKey(industry, brand string, count int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", industry, brand, count)))
	return fmt.Sprintf("queries:%x", h)
}

// AnswerKey keys one provider's answer to a normalized query.
func AnswerKey(provider, query string) string {
	h := sha256.Sum256([]byte(NormalizeQuery(query)))
	return fmt.Sprintf("answer:%s:%x", provider, h)
}

// ArtifactKey keys an analytics artifact by (job, analyzer kind).
func ArtifactKey(jobID uuid.UUID, kind string) string {
	return fmt.Sprintf("artifact:%s:%s", jobID, kind)
}

func JobStatusKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s", jobID)
}

func RateLimitKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:%s", clientIP)
}

// NormalizeQuery lowercases and collapses whitespace so near-identical query
// texts hit the same cache entry.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
