package jscheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsWellFormedJS(t *testing.T) {
	assert.Nil(t, Validate("function add(a, b) { return a + b; }"))
}

func TestValidateRejectsUnbalancedBraces(t *testing.T) {
	d := Validate("function add(a, b) { return a + b;")
	assert.NotNil(t, d)
	assert.Contains(t, d.Message, "reassembled js block failed to parse")
}

func TestValidateRejectsDroppedOperator(t *testing.T) {
	d := Validate("const x = 1 2;")
	assert.NotNil(t, d)
}

func TestValidateNeverMutatesInput(t *testing.T) {
	src := "const x = 1;"
	_ = Validate(src)
	assert.Equal(t, "const x = 1;", src)
}
