package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int", 3, 3},
		{"int64 from TOML", int64(4), 4},
		{"whole float", 5.0, 5},
		{"fractional float", 0.25, 0},
		{"string", "6", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Int(tt.in))
		})
	}
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float64", 0.5, 0.5},
		{"float32", float32(0.25), 0.25},
		{"int", 1, 1.0},
		{"int64", int64(2), 2.0},
		{"bool", true, 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Float(tt.in))
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "text", String("text"))
	assert.Equal(t, "", String(1))
	assert.Equal(t, "", String(nil))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(true))
	assert.False(t, Bool("true"))
	assert.False(t, Bool(nil))
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a"}, StringSlice([]string{"a"}))
	assert.Equal(t, []string{"a", "b"}, StringSlice([]any{"a", 1, "b"}))
	assert.Equal(t, []string{}, StringSlice([]any{}))
	assert.Nil(t, StringSlice("a"))
	assert.Nil(t, StringSlice(nil))
}
