package words

import (
	"strings"
	"testing"
)

func TestInitLoadsEmbeddedPool(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Count() == 0 {
		t.Fatal("embedded pool is empty")
	}
}

func TestSampleClampsAndDeduplicates(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	got := Sample(Count() + 100)
	if len(got) != Count() {
		t.Errorf("oversized sample = %d words, want pool size %d", len(got), Count())
	}
	seen := map[string]bool{}
	for _, w := range got {
		if seen[w] {
			t.Errorf("duplicate word %q in sample", w)
		}
		seen[w] = true
	}

	if got := Sample(5); len(got) != 5 {
		t.Errorf("sample = %d words, want 5", len(got))
	}
}

func TestParseLinesSkipsBlanksAndComments(t *testing.T) {
	in := "# header\n\nlighthouse\n  avalanche  \n# comment\njellyfish\n"
	got := parseLines(strings.NewReader(in))
	want := []string{"lighthouse", "avalanche", "jellyfish"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
