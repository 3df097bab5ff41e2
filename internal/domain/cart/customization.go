// internal/domain/cart/customization.go
package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CustomizationFingerprint returns a canonical SHA-256 fingerprint for a
// customization payload. Maps are serialized with sorted keys at every level,
// so two payloads that differ only in key order produce the same fingerprint.
// An empty or nil payload yields the empty string.
func CustomizationFingerprint(custom map[string]interface{}) string {
	if len(custom) == 0 {
		return ""
	}

	var sb strings.Builder
	writeCanonical(&sb, custom)

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func writeCanonical(sb *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(k)
			sb.Write(keyJSON)
			sb.WriteByte(':')
			writeCanonical(sb, val[k])
		}
		sb.WriteByte('}')
	case []interface{}:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, item)
		}
		sb.WriteByte(']')
	case json.Number:
		sb.WriteString(val.String())
	default:
		// Scalars round-trip through encoding/json for stable formatting
		out, err := json.Marshal(val)
		if err != nil {
			sb.WriteString(fmt.Sprintf("%v", val))
			return
		}
		sb.Write(out)
	}
}
