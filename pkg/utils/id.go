package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var idCounter uint64

// GenerateRunID returns run-YYYYMMDD-HHMMSS-<8 hex chars>.
func GenerateRunID() string {
	return generatePrefixedID("run")
}

// GenerateJobID returns job-YYYYMMDD-HHMMSS-<8 hex chars>.
func GenerateJobID() string {
	return generatePrefixedID("job")
}

func generatePrefixedID(prefix string) string {
	timestamp := time.Now().Format("20060102-150405")
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("%s-%s-%08x", prefix, timestamp, count)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, timestamp, hex.EncodeToString(b))
}
