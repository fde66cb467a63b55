package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil slice", nil, nil},
		{"empty slice", []string{}, []string{}},
		{"trims whitespace", []string{"  foo  ", "bar  "}, []string{"foo", "bar"}},
		{"dedupes preserving order", []string{"foo", "bar", "foo", "baz", "bar"}, []string{"foo", "bar", "baz"}},
		{"drops empties", []string{"foo", "", "  ", "bar"}, []string{"foo", "bar"}},
		{"preserves case", []string{"Foo", "foo"}, []string{"Foo", "foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
