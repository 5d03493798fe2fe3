package utils

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashBytes returns the hex-encoded BLAKE2b-256 digest of data. Equal byte
// sequences always produce equal digests.
func HashBytes(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ParamsDigest computes a content-stable digest over a configuration map.
// Entries are serialized in sorted key order, so maps with equal contents
// digest identically regardless of insertion order or process lifetime.
func ParamsDigest(params map[string]any) string {
	if len(params) == 0 {
		return HashBytes(nil)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, params[k])
	}
	return HashBytes([]byte(b.String()))
}
