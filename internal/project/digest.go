package project

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sort"
)

// Digest is a sha256 content hash. It keys the disk cache and detects
// stale inputs.
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest was never computed.
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}

// HashBytes digests a byte slice.
func HashBytes(b []byte) Digest {
	return sha256.Sum256(b)
}

// HashFile digests a file's contents.
func HashFile(path string) (Digest, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the caller
	if err != nil {
		return Digest{}, err
	}
	return HashBytes(content), nil
}

// Combine folds several digests into one, order-independent: the inputs
// are sorted before hashing so the result does not depend on traversal
// order.
func Combine(digests []Digest) Digest {
	sorted := make([]Digest, len(digests))
	copy(sorted, digests)
	sort.Slice(sorted, func(i, j int) bool {
		for k := 0; k < len(sorted[i]); k++ {
			if sorted[i][k] != sorted[j][k] {
				return sorted[i][k] < sorted[j][k]
			}
		}
		return false
	})
	h := sha256.New()
	for _, d := range sorted {
		h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
