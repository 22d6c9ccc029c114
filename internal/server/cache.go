package server

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RenderCache holds encoded renderings keyed by input digest and band.
type RenderCache struct {
	*lru.Cache[string, []byte]
}

// NewRenderCache creates a cache holding at most size renderings.
func NewRenderCache(size int) (*RenderCache, error) {
	lruCache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}

	return &RenderCache{
		Cache: lruCache,
	}, nil
}

// CacheKey identifies the rendering of body for band.
func CacheKey(body []byte, band string) string {
	sum := sha256.Sum256(body)

	return band + ":" + hex.EncodeToString(sum[:])
}
