package change

import (
	"strings"
	"testing"
)

func TestHasSignificantChange(t *testing.T) {
	tests := []struct {
		name      string
		baseline  string
		current   string
		threshold float64
		want      bool
	}{
		{
			name:      "both empty",
			baseline:  "",
			current:   "",
			threshold: 0,
			want:      false,
		},
		{
			name:      "identical with zero threshold",
			baseline:  "hello world",
			current:   "hello world",
			threshold: 0,
			want:      false,
		},
		{
			name:      "zero threshold counts any difference",
			baseline:  "hello",
			current:   "hello!",
			threshold: 0,
			want:      true,
		},
		{
			name:      "zero threshold counts same-length difference",
			baseline:  "hello world",
			current:   "hello worle",
			threshold: 0,
			want:      true,
		},
		{
			name:      "empty baseline to two chars at 5 percent",
			baseline:  "",
			current:   "hi",
			threshold: 5,
			want:      true, // 2/1 = 200%
		},
		{
			name:      "one char appended at 5 percent",
			baseline:  "hello world",
			current:   "hello world!",
			threshold: 5,
			want:      true, // 1/11 ≈ 9.1%
		},
		{
			name:      "same-length edit is invisible above zero threshold",
			baseline:  "hello world",
			current:   "hello worle",
			threshold: 5,
			want:      false, // 0% delta
		},
		{
			name:      "small append below threshold",
			baseline:  strings.Repeat("a", 100),
			current:   strings.Repeat("a", 104),
			threshold: 5,
			want:      false, // 4%
		},
		{
			name:      "delta exactly at threshold",
			baseline:  strings.Repeat("a", 100),
			current:   strings.Repeat("a", 105),
			threshold: 5,
			want:      true, // 5% >= 5
		},
		{
			name:      "deletion counts too",
			baseline:  strings.Repeat("a", 100),
			current:   strings.Repeat("a", 80),
			threshold: 10,
			want:      true, // 20%
		},
		{
			name:      "multibyte runes counted as characters",
			baseline:  "héllo",
			current:   "héllo wörld",
			threshold: 50,
			want:      true, // 6/5 = 120%
		},
		{
			name:      "negative threshold clamps to zero",
			baseline:  "a",
			current:   "b",
			threshold: -10,
			want:      true,
		},
		{
			name:      "threshold above 100 clamps",
			baseline:  "ab",
			current:   "abab",
			threshold: 250,
			want:      true, // 100% >= clamp(250)=100
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasSignificantChange(tt.baseline, tt.current, tt.threshold)
			if got != tt.want {
				t.Errorf("HasSignificantChange(%q, %q, %v) = %v, want %v",
					tt.baseline, tt.current, tt.threshold, got, tt.want)
			}
		})
	}
}
