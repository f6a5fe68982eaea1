// Where: internal/infra/synth/logical_id.go
// What: Stable logical id derivation from construct paths.
// Why: Keep ids readable while avoiding collisions across nested constructs.
package synth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

const maxHumanPart = 240

// LogicalID derives a CloudFormation logical id from a construct path:
// the alphanumeric path components, minus the stack id, followed by eight
// upper-case hex characters of the path hash.
func LogicalID(path ...string) string {
	full := strings.Join(path, "/")
	sum := sha256.Sum256([]byte(full))
	suffix := strings.ToUpper(hex.EncodeToString(sum[:4]))

	components := path
	if len(components) > 1 {
		components = components[1:]
	}
	var human strings.Builder
	for _, component := range components {
		for _, r := range component {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				human.WriteRune(r)
			}
		}
	}
	name := human.String()
	if len(name) > maxHumanPart {
		name = name[:maxHumanPart]
	}
	return name + suffix
}
