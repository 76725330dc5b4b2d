package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestNewWordhash_EmptyList(t *testing.T) {
	w := testWords()
	w.Teams = nil
	if _, err := NewWordhash(w, 1, 1); err == nil {
		t.Error("NewWordhash() expected error for empty team list, got nil")
	}
}

func TestObjectName_Deterministic(t *testing.T) {
	wh := testWordhash(t)
	a := wh.ObjectName([]byte("2.3:1.0"), 12)
	b := wh.ObjectName([]byte("2.3:1.0"), 12)
	if a != b {
		t.Errorf("ObjectName() = %q then %q, want identical", a, b)
	}
}

func TestObjectName_RespectsMaxLength(t *testing.T) {
	wh := testWordhash(t)
	for _, port := range []string{"1:1.0", "1:1.1", "2.1:1.0", "2.2:1.0", "3.4.1:1.0", "7:1.3"} {
		name := wh.ObjectName([]byte(port), 8)
		if len(name) > 8 {
			t.Errorf("ObjectName(%q, 8) = %q, longer than 8", port, name)
		}
	}
}

func TestObjectName_RetryMatchesMarkerHash(t *testing.T) {
	wh := testWordhash(t)

	// Find an input whose first candidate is longer than the shortest
	// possible name, make the limit reject it, then check the retry used the
	// marker byte.
	var input []byte
	var first string
	for i := 0; ; i++ {
		input = []byte(strings.Repeat("9", i+1) + ":1.0")
		a, n := hashIntegers(input, 7)
		first = pick(a, wh.words.Adjectives) + pick(n, wh.words.Nouns)
		if len(first) > wh.ShortestName() {
			break
		}
	}

	got := wh.ObjectName(input, len(first)-1)
	if len(got) >= len(first) {
		t.Fatalf("ObjectName() = %q, want shorter than %q", got, first)
	}

	buf := append([]byte(nil), input...)
	for {
		buf = append(buf, nameRetryMarker)
		a, n := hashIntegers(buf, 7)
		c := pick(a, wh.words.Adjectives) + pick(n, wh.words.Nouns)
		if len(c) < len(first) {
			if c != got {
				t.Errorf("ObjectName() = %q, want %q", got, c)
			}
			break
		}
	}
}

func TestObjectName_SaltChangesNames(t *testing.T) {
	w := testWords()
	a, _ := NewWordhash(w, 1, 1)
	b, _ := NewWordhash(w, 2, 1)

	differ := false
	for _, port := range []string{"1:1.0", "2:1.0", "3:1.0", "4:1.0", "5:1.0"} {
		if a.ObjectName([]byte(port), 20) != b.ObjectName([]byte(port), 20) {
			differ = true
		}
	}
	if !differ {
		t.Error("changing the salt did not change any name")
	}
}

func TestTeamName(t *testing.T) {
	wh := testWordhash(t)
	members := []string{"BraveFox", "CalmOwl"}

	name := wh.TeamName(members)
	if name != wh.TeamName(slices.Clone(members)) {
		t.Error("TeamName() is not deterministic")
	}

	parts := strings.SplitN(name, " ", 2)
	if len(parts) != 2 {
		t.Fatalf("TeamName() = %q, want \"<adjective> <team>\"", name)
	}
	if !slices.Contains(testWords().Adjectives, parts[0]) {
		t.Errorf("TeamName() adjective %q not in list", parts[0])
	}
	if !slices.Contains(testWords().Teams, parts[1]) {
		t.Errorf("TeamName() team word %q not in list", parts[1])
	}
}

func TestShortestName(t *testing.T) {
	wh := testWordhash(t)
	if got := wh.ShortestName(); got != len("Icy")+len("Fox") {
		t.Errorf("ShortestName() = %d, want %d", got, 6)
	}
}

func TestParseWordList(t *testing.T) {
	got := parseWordList([]byte("# comment\nAlpha\n\n  Beta  \n#Gamma\nDelta"))
	want := []string{"Alpha", "Beta", "Delta"}
	if !slices.Equal(got, want) {
		t.Errorf("parseWordList() = %v, want %v", got, want)
	}
}

func TestLoadWords_OverrideAndFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "words"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "words", "teams.txt"), []byte("Only\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadWords(dir)
	if err != nil {
		t.Fatalf("LoadWords() error = %v", err)
	}
	if !slices.Equal(w.Teams, []string{"Only"}) {
		t.Errorf("Teams = %v, want [Only]", w.Teams)
	}
	if len(w.Adjectives) == 0 || len(w.Nouns) == 0 {
		t.Error("embedded adjective/noun lists were not used as fallback")
	}
}
