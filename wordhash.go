package main

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// nameRetryMarker is appended to the hash input whenever a candidate display
// name is longer than the configured maximum.
const nameRetryMarker = 0x0b

// Words holds the three word pools used to derive display and team names.
type Words struct {
	Adjectives []string
	Nouns      []string
	Teams      []string
}

// Wordhash turns arbitrary bytes into short human-readable names.
type Wordhash struct {
	words    Words
	nameSalt uint32
	teamSalt uint32
}

// NewWordhash creates a Wordhash. Each pool must be non-empty.
func NewWordhash(words Words, nameSalt, teamSalt uint32) (*Wordhash, error) {
	if len(words.Adjectives) == 0 || len(words.Nouns) == 0 || len(words.Teams) == 0 {
		return nil, fmt.Errorf("word lists must not be empty (adjectives=%d nouns=%d teams=%d)",
			len(words.Adjectives), len(words.Nouns), len(words.Teams))
	}
	return &Wordhash{words: words, nameSalt: nameSalt, teamSalt: teamSalt}, nil
}

// hashIntegers hashes input followed by the big-endian salt and returns the
// first two 16-bit words of the digest.
func hashIntegers(input []byte, salt uint32) (uint16, uint16) {
	h := sha256.New()
	h.Write(input)
	var s [4]byte
	binary.BigEndian.PutUint32(s[:], salt)
	h.Write(s[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint16(sum[0:2]), binary.BigEndian.Uint16(sum[2:4])
}

func pick(index uint16, list []string) string {
	return list[int(index)%len(list)]
}

// ObjectName derives a display name for input no longer than maxLen bytes.
// The retry loop has no bound; callers must make sure maxLen admits at least
// one adjective+noun pair (see ShortestName).
func (w *Wordhash) ObjectName(input []byte, maxLen int) string {
	buf := append([]byte(nil), input...)
	for {
		a, n := hashIntegers(buf, w.nameSalt)
		candidate := pick(a, w.words.Adjectives) + pick(n, w.words.Nouns)
		if len(candidate) <= maxLen {
			return candidate
		}
		buf = append(buf, nameRetryMarker)
	}
}

// TeamName derives a team name from the concatenated member names.
func (w *Wordhash) TeamName(members []string) string {
	var b bytes.Buffer
	for _, m := range members {
		b.WriteString(m)
		b.WriteByte('.')
	}
	a, t := hashIntegers(b.Bytes(), w.teamSalt)
	return pick(a, w.words.Adjectives) + " " + pick(t, w.words.Teams)
}

// ShortestName returns the length of the shortest possible display name.
func (w *Wordhash) ShortestName() int {
	return shortest(w.words.Adjectives) + shortest(w.words.Nouns)
}

func shortest(list []string) int {
	n := -1
	for _, s := range list {
		if n < 0 || len(s) < n {
			n = len(s)
		}
	}
	return n
}

// LoadWords reads the word pools from dir/words/, falling back to the
// embedded defaults for any list that is missing.
func LoadWords(dir string) (Words, error) {
	var w Words
	lists := []struct {
		file string
		dst  *[]string
	}{
		{"adjectives.txt", &w.Adjectives},
		{"nouns.txt", &w.Nouns},
		{"teams.txt", &w.Teams},
	}
	for _, l := range lists {
		data, err := os.ReadFile(filepath.Join(dir, "words", l.file))
		if os.IsNotExist(err) {
			dbg("word list %s not in config dir, using embedded default", l.file)
			data, err = defaultConfigs.ReadFile("defaults/words/" + l.file)
		}
		if err != nil {
			return Words{}, fmt.Errorf("read %s: %w", l.file, err)
		}
		*l.dst = parseWordList(data)
	}
	return w, nil
}

// parseWordList returns the non-blank, non-comment lines of data.
func parseWordList(data []byte) []string {
	var words []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}
