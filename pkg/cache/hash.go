package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
)

// Hash returns the hex SHA-256 of data. Source files and RMAT descriptors
// are identified by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFloat64s hashes the exact bit patterns of vals, so a PageRank guess
// that differs in the last ulp gets its own key. -0 and 0 hash differently.
func HashFloat64s(vals []float64) string {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(vals)))
	h.Write(buf[:])
	for _, v := range vals {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// hashKey returns "<kind>:<sha256 of the JSON-encoded parts>". The options
// structs have fixed field order, so equal options give equal keys.
func hashKey(kind string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		// Only NaN or Inf option values fail to encode; key them by text.
		data = fmt.Appendf(nil, "%#v", parts)
	}
	return kind + ":" + Hash(data)
}
