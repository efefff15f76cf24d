package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Identifiers are content-derived so that resolving the same input
// twice yields identical output. Random tokens would defeat both the
// idempotence guarantee and the result cache.

func instanceID(key string, number int, started time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("encounter|%s|%d|%d", key, number, started.UnixNano())))
	return hex.EncodeToString(sum[:8])
}

func sessionID(player string, number int, started time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("session|%s|%d|%d", player, number, started.UnixNano())))
	return hex.EncodeToString(sum[:8])
}
