// internal/words/words.go
//
// Built-in word pool for quick-start rooms. Player-contributed words are
// the primary path; rooms created without any draw a sample from here.
//
// Initialization behavior (Init):
//   1. If WORDS_FILE is set, load the pool from that file
//      (one word or short phrase per line, '#' comments allowed).
//   2. Otherwise fall back to the embedded default list.
//
// Initialization is run once (sync.Once).

package words

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"sync"
)

//go:embed default_words.txt
var embeddedWords string

var (
	initOnce   sync.Once
	pool       []string
	initialErr error
)

// Init loads the word pool exactly once. Returns an error if the pool ends
// up empty.
func Init() error {
	initOnce.Do(func() {
		if path := os.Getenv("WORDS_FILE"); path != "" {
			list, err := readWordFile(path)
			if err != nil {
				initialErr = err
				return
			}
			pool = list
		} else {
			pool = parseLines(strings.NewReader(embeddedWords))
		}
		if len(pool) == 0 {
			initialErr = errors.New("word pool is empty")
		}
	})
	return initialErr
}

// Sample returns n distinct words from the pool. n is clamped to the pool
// size.
func Sample(n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := rand.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

// Count reports the pool size, for diagnostics.
func Count() int { return len(pool) }

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word file: %w", err)
	}
	defer f.Close()
	return parseLines(f), nil
}

func parseLines(r io.Reader) []string {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out
}
