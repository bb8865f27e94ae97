package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single vendor", input: "Acme Valve", expected: []string{"Acme Valve"}},
		{name: "two vendors", input: "Acme Valve, Bronze Works", expected: []string{"Acme Valve", "Bronze Works"}},
		{name: "trailing comma", input: "Acme,", expected: []string{"Acme"}},
		{name: "only spaces", input: "   ", expected: nil},
		{name: "comma only", input: ",", expected: nil},
		{name: "multiple commas", input: ",,A,,B,,", expected: []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "GLOBE", FirstToken("GLOBE VALVE 50A"))
	assert.Equal(t, "GLOBE", FirstToken("   GLOBE"))
	assert.Equal(t, "", FirstToken("   "))
	assert.Equal(t, "", FirstToken(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "밸브", Truncate("밸브타입", 2))
	assert.Equal(t, "abc", Truncate("abc", -1))
}
