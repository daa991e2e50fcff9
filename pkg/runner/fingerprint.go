package runner

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mtc-analytics/patlens/pkg/types"
)

// Fingerprint computes the cache key for a (query id, value set) pair.
// Values are folded in declared-parameter order using their canonical form,
// so multi-select element order never produces a distinct key. Text values
// are not case-folded: distinct user intents stay distinct.
func Fingerprint(def *types.QueryDefinition, vals types.ValueSet) string {
	h := sha256.New()
	h.Write([]byte(def.Id))
	for _, p := range def.Parameters {
		v, ok := vals[p.Name]
		if !ok {
			continue
		}
		h.Write([]byte{0})
		h.Write([]byte(p.Name))
		h.Write([]byte{'='})
		h.Write([]byte(v.Canonical()))
	}
	return hex.EncodeToString(h.Sum(nil))
}
