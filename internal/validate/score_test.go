package validate

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		criticals int
		warnings  int
		want      int
	}{
		{"clean", 0, 0, 100},
		{"one critical", 1, 0, 80},
		{"one warning", 0, 1, 95},
		{"mixed", 2, 3, 45},
		{"floors at zero", 6, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.criticals, tt.warnings); got != tt.want {
				t.Errorf("Score(%d, %d) = %d, want %d", tt.criticals, tt.warnings, got, tt.want)
			}
		})
	}
}

func TestScore_Monotonic(t *testing.T) {
	for c := 0; c < 5; c++ {
		for w := 0; w < 5; w++ {
			base := Score(c, w)
			if Score(c+1, w) > base {
				t.Fatalf("adding a critical increased score at (%d,%d)", c, w)
			}
			if Score(c, w+1) > base {
				t.Fatalf("adding a warning increased score at (%d,%d)", c, w)
			}
			if Score(c, w+1) > 0 && Score(c+1, w) >= Score(c, w+1) {
				t.Fatalf("critical should cost more than warning at (%d,%d)", c, w)
			}
		}
	}
}
