package textnorm_test

import (
	"testing"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/textnorm"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "¿cuanto cuesta lazaro cardenas?", textnorm.Fold("¿Cuánto cuesta   Lázaro Cárdenas?"))
	assert.Equal(t, "si", textnorm.Fold(" Sí "))
	assert.Equal(t, "atras", textnorm.Fold("Atrás"))
	assert.Equal(t, "", textnorm.Fold("   "))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, textnorm.ContainsAny("quiero rastrear mi envio", "rastre", "track"))
	assert.False(t, textnorm.ContainsAny("hola", "precio", ""))
}
