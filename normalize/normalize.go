// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package normalize reduces free text to the canonical stemmed form used for
// comparing queries against catalog fields.
//
// Text is lower-cased, split on whitespace, and every token is reduced to its
// English stem. Tokens are rejoined with single spaces. Queries and catalog
// fields must both pass through Text for comparisons to be meaningful.
package normalize

import (
	"strings"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Text returns the canonical stemmed form of s.
// Empty and whitespace-only input normalizes to the empty string.
func Text(s string) string {
	words := strings.Fields(Lower(s))
	if len(words) == 0 {
		return ""
	}
	for i, word := range words {
		words[i] = english.Stem(word, true)
	}
	return strings.Join(words, " ")
}

// Stem returns the stem of a single lower-case token.
func Stem(word string) string {
	return english.Stem(word, true)
}

// Lower lower-cases s using Unicode case mapping.
// A Caser holds state, so one is created per call.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
