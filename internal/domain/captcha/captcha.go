// Package captcha builds textual challenges asking for a given letter of a
// dictionary word, for example "What is the second vowel of the word GARDEN?".
package captcha

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Vowels are the letters considered vowels by the vowel and consonant generators
const Vowels = "AEIOUY"

var ordinals = []string{
	"first", "second", "third", "fourth", "fifth",
	"sixth", "seventh", "eighth", "ninth", "tenth",
}

// MaxIndex is the number of positions that can be asked for
var MaxIndex = len(ordinals)

// ErrNoCandidate is returned when a word has no letter of the requested kind
var ErrNoCandidate = errors.New("captcha: word has no matching letter")

// Challenge is a question and its expected answer
type Challenge struct {
	Question string
	Answer   string
}

// Generator asks for one kind of letter in a word
type Generator interface {
	// Name identifies the generator
	Name() string
	// Candidates returns the letters of the word the generator can ask about, in order
	Candidates(word string) []rune
	// Question formats the question for the ordinal ("first", "second", ...)
	Question(word, ordinal string) string
	// Challenge builds the challenge asking for the candidate at index
	Challenge(word string, index int) (Challenge, error)
}

// Dictionary provides random words
type Dictionary interface {
	RandomWord() (string, error)
}

// Random is the source of randomness used to pick generators, words and letters
type Random interface {
	IntN(n int) int
}

// SharedRandom uses the top-level math/rand source, safe for concurrent use
type SharedRandom struct{}

// IntN returns a number in [0, n)
func (SharedRandom) IntN(n int) int { return rand.IntN(n) }

// Ordinal returns the English ordinal for a zero-based index
func Ordinal(index int) (string, error) {
	if index < 0 || index >= len(ordinals) {
		return "", fmt.Errorf("captcha: index %d out of range", index)
	}
	return ordinals[index], nil
}

// Generate builds the challenge asking for the candidate at index
func Generate(g Generator, word string, index int) (Challenge, error) {
	word = strings.ToUpper(strings.TrimSpace(word))
	candidates := g.Candidates(word)
	if len(candidates) == 0 {
		return Challenge{}, ErrNoCandidate
	}
	if index < 0 || index >= len(candidates) || index >= MaxIndex {
		return Challenge{}, fmt.Errorf("captcha: index %d out of range for %s", index, word)
	}
	ordinal, err := Ordinal(index)
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{
		Question: g.Question(word, ordinal),
		Answer:   string(candidates[index]),
	}, nil
}

// Builder picks a random generator, word and position
type Builder struct {
	generators []Generator
	dictionary Dictionary
	random     Random
	attempts   int
}

// NewBuilder creates a builder over the given generators
func NewBuilder(dictionary Dictionary, random Random, generators ...Generator) *Builder {
	if len(generators) == 0 {
		generators = DefaultGenerators()
	}
	return &Builder{
		generators: generators,
		dictionary: dictionary,
		random:     random,
		attempts:   10,
	}
}

// Build returns a new random challenge. Words without a matching letter are skipped.
func (b *Builder) Build() (Challenge, error) {
	for i := 0; i < b.attempts; i++ {
		word, err := b.dictionary.RandomWord()
		if err != nil {
			return Challenge{}, err
		}
		g := b.generators[b.random.IntN(len(b.generators))]
		candidates := g.Candidates(strings.ToUpper(word))
		if len(candidates) == 0 {
			continue
		}
		n := min(len(candidates), MaxIndex)
		return g.Challenge(word, b.random.IntN(n))
	}
	return Challenge{}, ErrNoCandidate
}

// DefaultGenerators returns the letter, vowel and consonant generators
func DefaultGenerators() []Generator {
	return []Generator{LetterGenerator{}, VowelGenerator{}, ConsonantGenerator{}}
}

// NormalizeAnswer upper-cases the answer and removes accents and surrounding spaces
func NormalizeAnswer(answer string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(answer))
	if err != nil {
		folded = strings.TrimSpace(answer)
	}
	return strings.ToUpper(folded)
}

// Matches compares an answer with the expected one, ignoring case and accents
func Matches(expected, answer string) bool {
	a := NormalizeAnswer(answer)
	return a != "" && a == NormalizeAnswer(expected)
}

func isVowel(r rune) bool {
	return strings.ContainsRune(Vowels, unicode.ToUpper(r))
}
