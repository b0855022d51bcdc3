package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint derives the device fingerprint from the stable descriptor
// fields. Empty fields are skipped so a client that cannot report, say, the
// OS version still produces a stable hash. Comparison downstream is exact
// string equality.
func Fingerprint(d Descriptor) string {
	parts := make([]string, 0, 5)
	for _, v := range []string{d.DeviceID, d.Model, d.Brand, d.Platform, d.OSVersion} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
