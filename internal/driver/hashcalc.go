package driver

import (
	"crypto/sha256"
)

// Digest is a SHA-256 cache key.
type Digest [32]byte

// combineDigest: H(content || part1 || part2 ...).
func combineDigest(content Digest, parts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// unitKey identifies a unit result: the file content hash, the settings
// fingerprint and the cache schema.
func unitKey(content [32]byte, fingerprint string) Digest {
	schema := []byte{byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)}
	return combineDigest(content, []byte(fingerprint), schema)
}
