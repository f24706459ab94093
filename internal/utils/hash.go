package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ContentHash returns the SHA-256 hex digest of a message body.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// MessageDedupKey builds the stable per-message key used to union message
// sets across re-ingested exports. Platforms issue no message ids, so the key
// is timestamp + direction + content hash.
func MessageDedupKey(sentAt time.Time, direction string, contentHash string) string {
	return fmt.Sprintf("%d:%s:%s", sentAt.UTC().Unix(), direction, contentHash)
}
