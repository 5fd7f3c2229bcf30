package invitecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	assert.Nil(t, err, "Should not have an error during generation")
	assert.Len(t, code, CodeLength, "Code should have the configured length")
	assert.Nil(t, Validate(code), "Generated code should pass validation")
}

func TestGenerateCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		assert.Nil(t, err)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(alphabet, r), "Code should only use the unambiguous alphabet, got %q", r)
		}
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABCD2345", Normalize("  abcd2345 "), "Normalize should trim and uppercase")
}

func TestValidate_ErrorHandling(t *testing.T) {
	assert.NotNil(t, Validate("ABC"), "Expected an error for short code")
	assert.NotNil(t, Validate("ABCD23456"), "Expected an error for long code")
	assert.NotNil(t, Validate("ABCD-345"), "Expected an error for punctuation")
	assert.Nil(t, Validate("ABCD2345"))
}
