package slides

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewObjectID returns an object id of the form <prefix>_<unix millis>_<6
// lowercase alphanumerics>, which satisfies the Slides object id rules.
func NewObjectID(prefix string) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}
