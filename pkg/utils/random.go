package utils

import (
	"crypto/rand"
	"hash/fnv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GenerateID создает ULID: уникальный и сортируемый по времени создания (матчи, сессии, логи)
func GenerateID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// StringToSeed превращает строку в зерно генератора (FNV-1a).
// Одна и та же фраза всегда дает одно и то же зерно.
func StringToSeed(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
