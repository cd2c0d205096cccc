package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstList_Append(t *testing.T) {
	a := One(Instruction{Op: ILOAD, Dst: "%t0", Src1: "1"})
	b := One(Instruction{Op: RETURN})
	c := a.Append(b)
	assert.Len(t, c, 2)
	assert.Len(t, a, 1, "Append must not mutate its receiver")
}

func TestInstruction_String(t *testing.T) {
	testData := []struct {
		name string
		i    Instruction
		want string
	}{
		{"binary", Instruction{Op: ADD, Dst: "%t2", Src1: "%t0", Src2: "%t1"}, "ADD %t2,%t0,%t1"},
		{"unary", Instruction{Op: LOAD, Dst: "x", Src1: "%t0"}, "LOAD x,%t0"},
		{"label", Instruction{Op: LABEL, Dst: "endif0"}, "LABEL endif0"},
		{"bare return", Instruction{Op: RETURN}, "RETURN"},
		{"push with value", Instruction{Op: PUSH, Src1: "%t0"}, "PUSH %t0"},
		{"bare push", Instruction{Op: PUSH}, "PUSH"},
	}
	for _, td := range testData {
		assert.Equal(t, td.want, td.i.String(), td.name)
	}
}
