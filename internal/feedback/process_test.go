package feedback

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestProcessExtractsScore(t *testing.T) {
	comment, score := Process("This is an excellent essay. Score: 8.5")

	if score != "8.5" {
		t.Errorf("score = %q, want %q", score, "8.5")
	}
	if strings.Contains(comment, "excellent") {
		t.Errorf("comment still contains %q: %q", "excellent", comment)
	}
	if !strings.Contains(comment, "very good") {
		t.Errorf("comment missing substitution %q: %q", "very good", comment)
	}
	if strings.Contains(strings.ToLower(comment), "score") {
		t.Errorf("comment still contains score fragment: %q", comment)
	}
}

func TestProcessNoScore(t *testing.T) {
	comment, score := Process("You wrote a solid analysis.")

	if score != "" {
		t.Errorf("score = %q, want empty", score)
	}
	if comment != "You wrote a solid analysis." {
		t.Errorf("comment = %q", comment)
	}
}

func TestProcessScoreVariants(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantScore string
	}{
		{"integer", "Good work. Score: 7", "7"},
		{"decimal", "Good work. Score: 7.5", "7.5"},
		{"lowercase", "Good work. score:9", "9"},
		{"spaced colon", "Good work. Score :8", "8"},
		{"no colon", "Good work. Score 8", ""},
		{"two decimals keeps one", "Good work. Score: 8.55", "8.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, score := Process(tt.in)
			if score != tt.wantScore {
				t.Errorf("Process(%q) score = %q, want %q", tt.in, score, tt.wantScore)
			}
		})
	}
}

func TestProcessYouPrefix(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantPrefix string
	}{
		{"bare sentence gets prefix", "The essay meets the objectives.", "You, The essay"},
		{"already starts with You", "You met the objectives.", "You met"},
		{"word comma salutation kept", "Diego, the essay meets the objectives.", "Diego, the essay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment, _ := Process(tt.in)
			if !strings.HasPrefix(comment, tt.wantPrefix) {
				t.Errorf("Process(%q) comment = %q, want prefix %q", tt.in, comment, tt.wantPrefix)
			}
		})
	}
}

func TestProcessTruncates(t *testing.T) {
	long := "You " + strings.Repeat("a", 2000)
	comment, _ := Process(long)

	if len(comment) != maxCommentLength+3 {
		t.Errorf("comment length = %d, want %d", len(comment), maxCommentLength+3)
	}
	if !strings.HasSuffix(comment, "...") {
		t.Errorf("comment does not end with ellipsis marker: %q", comment[len(comment)-10:])
	}
}

func TestProcessTruncatesByCharacters(t *testing.T) {
	// 400 characters but 1200 bytes; under the cap, so untouched.
	short := "You " + strings.Repeat("你", 400)
	comment, _ := Process(short)
	if comment != short {
		t.Errorf("comment truncated below the character cap: len = %d runes", len([]rune(comment)))
	}

	long := "You " + strings.Repeat("你", 1200)
	comment, _ = Process(long)
	if got := len([]rune(comment)); got != maxCommentLength+3 {
		t.Errorf("comment length = %d runes, want %d", got, maxCommentLength+3)
	}
	if !utf8.ValidString(comment) {
		t.Error("comment is not valid UTF-8")
	}
	if !strings.HasSuffix(comment, "你...") {
		t.Errorf("comment cut mid-rune before the ellipsis marker: %q", comment[len(comment)-12:])
	}
}

func TestSoften(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"case insensitive", "An Excellent and COMPREHENSIVE essay", "An very good and complete essay"},
		{"whole word only", "greatness is not softened", "greatness is not softened"},
		{"multiple words", "great great work", "good good work"},
		{"untouched", "a thoughtful response", "a thoughtful response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Soften(tt.in); got != tt.want {
				t.Errorf("Soften(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSalute(t *testing.T) {
	tests := []struct {
		name      string
		comment   string
		firstName string
		want      string
	}{
		{"prepends name", "the essay is strong.", "Diego", "Diego, the essay is strong."},
		{"lowercases remainder", "The essay is strong.", "Diego", "Diego, the essay is strong."},
		{"replaces wrong salutation", "Maria, the essay is strong.", "Diego", "Diego, the essay is strong."},
		{"correct name round trips", "Diego, keep it up.", "Diego", "Diego, keep it up."},
		{"keeps You salutation stripped", "You, nice work.", "Diego", "Diego, nice work."},
		{"empty comment", "", "Diego", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Salute(tt.comment, tt.firstName); got != tt.want {
				t.Errorf("Salute(%q, %q) = %q, want %q", tt.comment, tt.firstName, got, tt.want)
			}
		})
	}
}

func TestResalute(t *testing.T) {
	tests := []struct {
		name      string
		comment   string
		firstName string
		want      string
	}{
		{"rewrites corrupted name", "Fautima, well argued.", "Fátima", "Fátima, well argued."},
		{"rewrites placeholder", "Student, well argued.", "Diego", "Diego, well argued."},
		{"no comma untouched", "Well argued overall.", "Diego", "Well argued overall."},
		{"empty", "", "Diego", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resalute(tt.comment, tt.firstName); got != tt.want {
				t.Errorf("Resalute(%q, %q) = %q, want %q", tt.comment, tt.firstName, got, tt.want)
			}
		})
	}
}
