package eval

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		success  float64
		expected float64
	}{
		{
			name:     "perfect availability",
			total:    100,
			success:  100,
			expected: 100.0,
		},
		{
			name:     "99.9% availability",
			total:    1000,
			success:  999,
			expected: 99.9,
		},
		{
			name:     "99.8% availability",
			total:    1000,
			success:  998,
			expected: 99.8,
		},
		{
			name:     "zero traffic is fully healthy",
			total:    0,
			success:  0,
			expected: 100.0,
		},
		{
			name:     "zero traffic ignores success count",
			total:    0,
			success:  42,
			expected: 100.0,
		},
		{
			name:     "all failures",
			total:    100,
			success:  0,
			expected: 0.0,
		},
		{
			name:     "success exceeding total is not clamped",
			total:    100,
			success:  150,
			expected: 150.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.total, tt.success)
			if math.Abs(got-tt.expected) > 0.0001 {
				t.Errorf("Ratio(%v, %v) = %v, want %v", tt.total, tt.success, got, tt.expected)
			}
		})
	}
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		target     float64
		wantBad    bool
	}{
		{
			name:       "above target passes",
			percentage: 99.95,
			target:     99.9,
			wantBad:    false,
		},
		{
			name:       "below target is bad",
			percentage: 99.8,
			target:     99.9,
			wantBad:    true,
		},
		{
			name:       "exactly at target passes",
			percentage: 99.9,
			target:     99.9,
			wantBad:    false,
		},
		{
			name:       "zero target never bad",
			percentage: 0,
			target:     0,
			wantBad:    false,
		},
		{
			name:       "above 100 passes any target",
			percentage: 150,
			target:     100,
			wantBad:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Verdict(tt.percentage, tt.target)
			if got != tt.wantBad {
				t.Errorf("Verdict(%v, %v) = %v, want %v", tt.percentage, tt.target, got, tt.wantBad)
			}
		})
	}
}

func TestRound3(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{99.9, 99.9},
		{99.8999, 99.9},
		{99.94449, 99.944},
		{100.0, 100.0},
		{66.66666, 66.667},
	}

	for _, tt := range tests {
		got := Round3(tt.input)
		if math.Abs(got-tt.expected) > 0.00001 {
			t.Errorf("Round3(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
