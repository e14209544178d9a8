package passgen

import (
	"fmt"
	"math"
	"unicode"
)

// DefaultAttemptsPerSecond is the hash rate assumed by crack-time estimates
// when the caller has no better figure (one billion attempts per second).
const DefaultAttemptsPerSecond = 1e9

// ShannonEntropy computes the Shannon entropy of a password in bits, based
// on the character frequency distribution within the string itself. A string
// of one repeated character has entropy 0.
func ShannonEntropy(password string) (float64, error) {
	if password == "" {
		return 0, fmt.Errorf("password is empty: %w", ErrInvalidArgument)
	}

	counts := make(map[rune]int)
	runes := []rune(password)
	for _, r := range runes {
		counts[r]++
	}

	entropy := 0.0
	length := float64(len(runes))
	for _, count := range counts {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy, nil
}

// MarkovEntropy computes the average per-transition entropy of a password
// under a trained model, in bits. Transitions the model has seen cost
// -log2 of their observed probability; transitions it has not seen cost
// log2 of the model's alphabet size, a uniform-distribution upper bound
// that rewards unpredictability. Passwords shorter than the model order,
// or exactly the model order (zero windows), fall back to Shannon entropy.
func MarkovEntropy(password string, model *Model) (float64, error) {
	if password == "" {
		return 0, fmt.Errorf("password is empty: %w", ErrInvalidArgument)
	}
	if model == nil || model.Len() == 0 {
		return 0, ErrEmptyModel
	}

	runes := []rune(password)
	n := model.order
	if len(runes) < n {
		return ShannonEntropy(password)
	}

	missCost := math.Log2(float64(len(model.Alphabet())))
	entropy := 0.0
	windows := 0

	for i := 0; i+n < len(runes); i++ {
		prefix := string(runes[i : i+n])
		actual := string(runes[i+n])
		windows++

		inner, ok := model.chains[prefix]
		if !ok {
			entropy += missCost
			continue
		}
		count, seen := inner[actual]
		if !seen {
			entropy += missCost
			continue
		}
		total := 0
		for _, c := range inner {
			total += c
		}
		entropy -= math.Log2(float64(count) / float64(total))
	}

	if windows == 0 {
		return ShannonEntropy(password)
	}
	return entropy / float64(windows), nil
}

// CrackTime describes a brute-force crack-time estimate for a password.
type CrackTime struct {
	CharsetSize  int     // Accumulated size of the character classes present.
	Combinations float64 // CharsetSize raised to the password length.
	Seconds      float64 // Expected time to search half the keyspace.
}

// crack-time display buckets, smallest first.
var crackBuckets = []struct {
	limit   float64
	divisor float64
	unit    string
}{
	{60, 1, "seconds"},
	{3600, 60, "minutes"},
	{86400, 3600, "hours"},
	{31536000, 86400, "days"},
	{3.1536e9, 31536000, "years"},
	{3.1536e10, 3.1536e9, "centuries"},
}

// String renders the estimate in the smallest matching display bucket,
// e.g. "2.5 years" or "3.1 centuries".
func (c CrackTime) String() string {
	for _, bucket := range crackBuckets {
		if c.Seconds < bucket.limit {
			return fmt.Sprintf("%.1f %s", c.Seconds/bucket.divisor, bucket.unit)
		}
	}
	return fmt.Sprintf("%.1f millennia", c.Seconds/3.1536e10)
}

// EstimateCrackTime estimates how long a brute-force search at the given
// attempt rate would need to find the password, assuming half the keyspace
// is searched. The keyspace is sized from the character classes present:
// lowercase 26, uppercase 26, digits 10, special 32 (minimum 1).
func EstimateCrackTime(password string, attemptsPerSecond float64) (CrackTime, error) {
	if password == "" {
		return CrackTime{}, fmt.Errorf("password is empty: %w", ErrInvalidArgument)
	}
	if attemptsPerSecond <= 0 {
		return CrackTime{}, fmt.Errorf("attempts per second must be positive, got %g: %w", attemptsPerSecond, ErrInvalidArgument)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	runes := []rune(password)
	for _, r := range runes {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	size := 0
	if hasLower {
		size += 26
	}
	if hasUpper {
		size += 26
	}
	if hasDigit {
		size += 10
	}
	if hasSpecial {
		size += 32
	}
	if size == 0 {
		size = 1
	}

	combinations := math.Pow(float64(size), float64(len(runes)))
	return CrackTime{
		CharsetSize:  size,
		Combinations: combinations,
		Seconds:      combinations / 2 / attemptsPerSecond,
	}, nil
}
