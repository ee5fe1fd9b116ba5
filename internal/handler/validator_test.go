package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/store-rating/internal/handler"
)

func TestValidPassword(t *testing.T) {
	for pw, want := range map[string]bool{
		"Secret#Pass1":      true,
		"Abcdefg!":          true, // exactly 8
		"Abcdefghijklmno*":  true, // exactly 16
		"Abcdef!":           false,
		"Abcdefghijklmnop*": false,
		"secret#pass1":      false,
		"SecretPass1":       false,
		"Secret%Pass1":      false,
		"":                  false,
	} {
		assert.Equal(t, want, handler.ValidPassword(pw), pw)
	}
}
