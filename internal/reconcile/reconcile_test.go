package reconcile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		candidates []any
		expected   *float64
	}{
		{
			name:       "first valid wins",
			candidates: []any{12.5, 99.0},
			expected:   ptr(12.5),
		},
		{
			name:       "skips nils and picks string",
			candidates: []any{nil, nil, "12.5"},
			expected:   ptr(12.5),
		},
		{
			name:       "all sentinels",
			candidates: []any{"N/A", "-", nil},
			expected:   nil,
		},
		{
			name:       "skips unparseable string",
			candidates: []any{"bad", 7.0},
			expected:   ptr(7.0),
		},
		{
			name:       "skips NaN",
			candidates: []any{math.NaN(), 3.0},
			expected:   ptr(3.0),
		},
		{
			name:       "skips infinity",
			candidates: []any{math.Inf(1), 3.0},
			expected:   ptr(3.0),
		},
		{
			name:       "empty string skipped",
			candidates: []any{"", 1.0},
			expected:   ptr(1.0),
		},
		{
			name:       "integer candidate",
			candidates: []any{42},
			expected:   ptr(42.0),
		},
		{
			name:       "no candidates",
			candidates: nil,
			expected:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile(tt.candidates...)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.InDelta(t, *tt.expected, *result, 1e-9)
		})
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		input    string
		expected *float64
	}{
		{"1.5B", ptr(1.5e9)},
		{"250M", ptr(2.5e8)},
		{"3.2K", ptr(3200.0)},
		{"1.1T", ptr(1.1e12)},
		{"$1,234.56", ptr(1234.56)},
		{"15%", ptr(15.0)},
		{"-3.4", ptr(-3.4)},
		{"42", ptr(42.0)},
		{"bad", nil},
		{"N/A", nil},
		{"-", nil},
		{"", nil},
		{"  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseNumeric(tt.input)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.InDelta(t, *tt.expected, *result, 1e-6)
		})
	}
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		input    string
		expected *float64
	}{
		{"15", ptr(0.15)},     // quoted in percent
		{"15%", ptr(0.15)},    // explicit percent sign
		{"0.15", ptr(0.15)},   // already decimal, passes through
		{"-22.5", ptr(-0.225)}, // negative magnitudes scale too
		{"1", ptr(1.0)}, // boundary: magnitude not above 1
		{"N/A", nil},
		{"junk", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParsePercentage(tt.input)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.InDelta(t, *tt.expected, *result, 1e-9)
		})
	}
}

func TestPercentageOf(t *testing.T) {
	assert.InDelta(t, 0.18, *PercentageOf(18.0), 1e-9)
	assert.InDelta(t, 0.18, *PercentageOf("18%"), 1e-9)
	assert.InDelta(t, 0.18, *PercentageOf(0.18), 1e-9)
	assert.Nil(t, PercentageOf(nil))
}

func ptr(v float64) *float64 { return &v }
