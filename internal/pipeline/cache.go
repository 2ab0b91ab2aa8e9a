package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/invoice-assets/internal/extract"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
)

// scanned is what a content hash maps to: the text and the bill parsed from it.
type scanned struct {
	Text extract.Result
	Bill invoice.BillInfo
}

// ResultCache remembers recent scans by content hash so duplicate uploads
// skip text acquisition and parsing.
type ResultCache struct {
	c *cache.Cache
}

func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResultCache{c: cache.New(ttl, 2*ttl)}
}

func (rc *ResultCache) get(hash string) (scanned, bool) {
	if rc == nil || hash == "" {
		return scanned{}, false
	}
	v, ok := rc.c.Get(hash)
	if !ok {
		return scanned{}, false
	}
	s, ok := v.(scanned)
	return s, ok
}

func (rc *ResultCache) put(hash string, s scanned) {
	if rc == nil || hash == "" {
		return
	}
	rc.c.SetDefault(hash, s)
}

// Len reports how many scans are cached.
func (rc *ResultCache) Len() int {
	if rc == nil {
		return 0
	}
	return rc.c.ItemCount()
}

// HashFile returns the hex sha256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
