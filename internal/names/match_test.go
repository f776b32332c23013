package names

import "testing"

func TestMatchExact(t *testing.T) {
	roster := []string{"Diego Ramirez", "Maria Lopez", "Amanda Lee"}

	idx, conf := Match("Maria Lopez", roster)
	if idx != 1 || conf != 100 {
		t.Errorf("Match = (%d, %d), want (1, 100)", idx, conf)
	}
}

func TestMatchExactAcrossEncodings(t *testing.T) {
	// Roster carries the composed form, the filename arrived decomposed.
	roster := []string{"Fátima García"}

	idx, conf := Match("Fátima García", roster)
	if idx != 0 || conf != 100 {
		t.Errorf("Match = (%d, %d), want (0, 100)", idx, conf)
	}
}

func TestMatchExactTieKeepsFirst(t *testing.T) {
	roster := []string{"Maria Lopez", "maria  lopez"}

	idx, conf := Match("Maria Lopez", roster)
	if idx != 0 || conf != 100 {
		t.Errorf("Match = (%d, %d), want (0, 100)", idx, conf)
	}
}

func TestMatchFuzzyAccepted(t *testing.T) {
	roster := []string{"Amanda Lee", "Fatima Garcia"}

	// "Fautima" carries an encoding corruption; token 1 partial-matches,
	// token 2 is exact: 0.9 + 1.0 over the fixed divisor of 2 is 95.
	idx, conf := Match("Fautima Garcia", roster)
	if idx != 1 {
		t.Fatalf("Match index = %d, want 1", idx)
	}
	if conf < MatchThreshold || conf >= 100 {
		t.Errorf("Match confidence = %d, want >= %d and < 100", conf, MatchThreshold)
	}
	if conf != 95 {
		t.Errorf("Match confidence = %d, want 95", conf)
	}
}

func TestMatchFuzzyRejected(t *testing.T) {
	roster := []string{"Amanda Lee"}

	idx, conf := Match("John Smith", roster)
	if idx != NoMatch || conf != 0 {
		t.Errorf("Match = (%d, %d), want (%d, 0)", idx, conf, NoMatch)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	if idx, conf := Match("", []string{"Amanda Lee"}); idx != NoMatch || conf != 0 {
		t.Errorf("empty candidate: Match = (%d, %d), want (%d, 0)", idx, conf, NoMatch)
	}
	if idx, conf := Match("Amanda Lee", nil); idx != NoMatch || conf != 0 {
		t.Errorf("empty roster: Match = (%d, %d), want (%d, 0)", idx, conf, NoMatch)
	}
	if idx, conf := Match("Amanda Lee", []string{""}); idx != NoMatch || conf != 0 {
		t.Errorf("empty roster name: Match = (%d, %d), want (%d, 0)", idx, conf, NoMatch)
	}
	// A fully-corrupted filename must not claim an empty roster cell as
	// an exact match.
	if idx, conf := Match("", []string{"", "Amanda Lee"}); idx != NoMatch || conf != 0 {
		t.Errorf("empty vs empty: Match = (%d, %d), want (%d, 0)", idx, conf, NoMatch)
	}
}

func TestMatchDoesNotMutateRoster(t *testing.T) {
	roster := []string{"Fátima García", "Amanda Lee"}
	Match("Fatima Garcia", roster)

	if roster[0] != "Fátima García" || roster[1] != "Amanda Lee" {
		t.Errorf("roster mutated: %v", roster)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		target    string
		want      int
	}{
		{"identical", "maria lopez", "maria lopez", 100},
		{"both tokens exact via canonical trim", "maria lopez", "maria lopez", 100},
		{"one exact one partial", "fautima garcia", "fatima garcia", 95},
		{"single exact token pair", "maria", "maria lopez", 50},
		{"both partial", "fautima garceia", "fatima garcia", 90},
		{"unrelated", "john smith", "amanda lee", 0},
		{"empty candidate", "", "amanda lee", 0},
		{"empty target", "john smith", "", 0},
		{"short tokens never partial", "al b", "el b", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similarity(tt.candidate, tt.target); got != tt.want {
				t.Errorf("similarity(%q, %q) = %d, want %d", tt.candidate, tt.target, got, tt.want)
			}
		})
	}
}
