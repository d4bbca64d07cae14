package visitor

import (
	"crypto/rand"
	"regexp"
	"strings"
)

// Access codes look like EW-4K7QX2M9: a recognizable prefix followed by
// 8 uppercase base36 characters drawn from crypto/rand.
const (
	CodePrefix = "EW-"
	codeLength = 8
	codeChars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var CodePattern = regexp.MustCompile(`^EW-[0-9A-Z]{8}$`)

// Largest multiple of len(codeChars) that fits in a byte. Bytes at or
// above it are redrawn so every character is equally likely.
const codeByteLimit = 256 - 256%len(codeChars)

// GenerateAccessCode returns a fresh access code. Uniqueness against the
// store is the caller's responsibility.
func GenerateAccessCode() (string, error) {
	var sb strings.Builder
	sb.WriteString(CodePrefix)

	buf := make([]byte, 1)
	for written := 0; written < codeLength; {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if int(buf[0]) >= codeByteLimit {
			continue
		}
		sb.WriteByte(codeChars[int(buf[0])%len(codeChars)])
		written++
	}
	return sb.String(), nil
}
