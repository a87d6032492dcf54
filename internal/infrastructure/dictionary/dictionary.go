// Package dictionary provides the word list of the captcha challenges
package dictionary

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"unicode/utf8"
)

// Word length bounds
const (
	MinLength = 5
	MaxLength = 10
)

//go:embed words.txt
var embedded string

// ErrEmpty is returned when no word is available
var ErrEmpty = errors.New("dictionary: no word available")

// Dictionary holds upper-cased words of 5 to 10 letters
type Dictionary struct {
	words []string
	intN  func(n int) int
}

// Default returns the embedded dictionary
func Default() *Dictionary {
	d, _ := Parse(strings.NewReader(embedded))
	return d
}

// Load reads a dictionary file, one word per line
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads one word per line. Blank lines, comments starting with #,
// words outside the length bounds and words with non-letters are skipped.
func Parse(r io.Reader) (*Dictionary, error) {
	seen := make(map[string]struct{})
	words := make([]string, 0, 128)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word := strings.ToUpper(line)
		if !valid(word) {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return &Dictionary{words: words, intN: rand.IntN}, nil
}

func valid(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < MinLength || n > MaxLength {
		return false
	}
	for _, r := range word {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Len returns the number of words
func (d *Dictionary) Len() int {
	return len(d.words)
}

// RandomWord returns a random word
func (d *Dictionary) RandomWord() (string, error) {
	if len(d.words) == 0 {
		return "", ErrEmpty
	}
	return d.words[d.intN(len(d.words))], nil
}
