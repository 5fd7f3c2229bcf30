package invitecode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Alphabet leaves out 0/O and 1/I so codes read unambiguously.
const (
	alphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength = 8
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

func GenerateCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[n.Int64()])
	}
	return sb.String(), nil
}

// Normalize trims and uppercases a user-supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a normalized code against the join contract.
func Validate(code string) error {
	if len(code) != CodeLength {
		return fmt.Errorf("invite code must be %d characters", CodeLength)
	}
	if !codePattern.MatchString(code) {
		return fmt.Errorf("invite code must contain only letters and numbers")
	}
	return nil
}
