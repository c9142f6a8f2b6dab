package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestOverall(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  float64
	}{
		{"full", State{12, 12, 12}, 12},
		{"empty", State{0, 0, 0}, 0},
		{"mixed", State{9, 6, 3}, 6},
		{"fractional", State{12, 12, 11}, 35.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Overall(tt.state), 1e-9)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous *float64
		want     Type
	}{
		{"no predecessor", 3, nil, TypeNormal},
		{"no predecessor full", 12, nil, TypeNormal},
		{"increase above threshold", 10, ptr(9.4), TypeIncrease},
		{"increase boundary excluded", 10, ptr(9.5), TypeNormal},
		{"drop boundary excluded", 5, ptr(7.0), TypeNormal},
		{"drop just past boundary", 5, ptr(7.01), TypeDrop},
		{"large drop", 9, ptr(12), TypeDrop},
		{"small gain", 12, ptr(11.75), TypeNormal},
		{"moderate dip", 10, ptr(11.5), TypeNormal},
		{"unchanged", 8, ptr(8), TypeNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.current, tt.previous))
		})
	}
}

func TestType(t *testing.T) {
	assert.True(t, TypeNormal.Valid())
	assert.True(t, TypeIncrease.Valid())
	assert.True(t, TypeDrop.Valid())
	assert.False(t, Type("spike").Valid())
	assert.False(t, Type("").Valid())

	assert.Equal(t, "●", TypeNormal.Icon())
	assert.Equal(t, "▲", TypeIncrease.Icon())
	assert.Equal(t, "▼", TypeDrop.Icon())
}
