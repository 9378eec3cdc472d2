package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := map[string]string{
		"192.168.1.47":                 "192.168.1.0",
		"::ffff:10.20.30.40":           "10.20.30.0",
		"2001:db8:85a3::8a2e:370:7334": "2001:db8:85a3::",
		"":                             "unknown",
		"not-an-ip":                    "invalid",
	}
	for in, want := range tests {
		assert.Equal(t, want, AnonymizeIP(in), in)
	}
}

func TestMaskSSN(t *testing.T) {
	assert.Equal(t, "***-**-6789", MaskSSN("123-45-6789"))
	assert.Equal(t, "***-**-6789", MaskSSN("123456789"))
	assert.Equal(t, "**", MaskSSN("12"))
}
