// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package engine

import (
	"strings"
	"unicode/utf8"
)

// stopWords is the fixed German stop-word list applied during tokenization.
var stopWords = map[string]struct{}{
	"der": {}, "die": {}, "das": {},
	"ein": {}, "eine": {},
	"und": {}, "oder": {},
	"in": {}, "am": {}, "im": {},
	"von": {}, "für": {}, "mit": {},
	"zum": {}, "zur": {},
}

// Tokenize splits a title into preference keywords: lowercased, whitespace
// separated, dropping tokens of length <= 3 runes and stop words.
func Tokenize(title string) []string {
	fields := strings.Fields(strings.ToLower(title))
	tokens := make([]string, 0, len(fields))

	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 3 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}

	return tokens
}
