package captcha

import (
	"fmt"
	"unicode"
)

// LetterGenerator asks for any letter of the word
type LetterGenerator struct{}

// Name implements Generator
func (LetterGenerator) Name() string { return "letter" }

// Candidates implements Generator
func (LetterGenerator) Candidates(word string) []rune {
	return filterLetters(word, func(rune) bool { return true })
}

// Question implements Generator
func (LetterGenerator) Question(word, ordinal string) string {
	return fmt.Sprintf("What is the %s letter of the word %s?", ordinal, word)
}

// Challenge implements Generator
func (g LetterGenerator) Challenge(word string, index int) (Challenge, error) {
	return Generate(g, word, index)
}

// VowelGenerator asks for a vowel of the word
type VowelGenerator struct{}

// Name implements Generator
func (VowelGenerator) Name() string { return "vowel" }

// Candidates implements Generator
func (VowelGenerator) Candidates(word string) []rune {
	return filterLetters(word, isVowel)
}

// Question implements Generator
func (VowelGenerator) Question(word, ordinal string) string {
	return fmt.Sprintf("What is the %s vowel of the word %s?", ordinal, word)
}

// Challenge implements Generator
func (g VowelGenerator) Challenge(word string, index int) (Challenge, error) {
	return Generate(g, word, index)
}

// ConsonantGenerator asks for a consonant of the word
type ConsonantGenerator struct{}

// Name implements Generator
func (ConsonantGenerator) Name() string { return "consonant" }

// Candidates implements Generator
func (ConsonantGenerator) Candidates(word string) []rune {
	return filterLetters(word, func(r rune) bool { return !isVowel(r) })
}

// Question implements Generator
func (ConsonantGenerator) Question(word, ordinal string) string {
	return fmt.Sprintf("What is the %s consonant of the word %s?", ordinal, word)
}

// Challenge implements Generator
func (g ConsonantGenerator) Challenge(word string, index int) (Challenge, error) {
	return Generate(g, word, index)
}

func filterLetters(word string, keep func(rune) bool) []rune {
	letters := make([]rune, 0, len(word))
	for _, r := range word {
		if unicode.IsLetter(r) && keep(r) {
			letters = append(letters, r)
		}
	}
	return letters
}
