package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// BuildContentHash digests a field map into a fixed-length hex string.
// Keys are serialised in sorted order and absent values become explicit
// nulls, so the output depends only on the logical field values — never
// on insertion order.
func BuildContentHash(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(k)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(canonicalValue(fields[k]))
	}
	buf.WriteByte('}')

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// canonicalValue renders one field value. Nil pointers and nil interfaces
// both map to the JSON null literal; times are rendered in UTC RFC 3339.
func canonicalValue(v any) []byte {
	switch x := v.(type) {
	case nil:
		return []byte("null")
	case *string:
		if x == nil {
			return []byte("null")
		}
		b, _ := json.Marshal(*x)
		return b
	case *time.Time:
		if x == nil {
			return []byte("null")
		}
		b, _ := json.Marshal(x.UTC().Format(time.RFC3339))
		return b
	case time.Time:
		b, _ := json.Marshal(x.UTC().Format(time.RFC3339))
		return b
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return []byte("null")
		}
		return b
	}
}
