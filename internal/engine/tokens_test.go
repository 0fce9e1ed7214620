// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package engine

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{
			name:  "stop words and short tokens dropped",
			title: "Die große Party im Park",
			want:  []string{"große", "party", "park"},
		},
		{
			name:  "lowercasing",
			title: "ABENDLAUF Im PARK",
			want:  []string{"abendlauf", "park"},
		},
		{
			name:  "short tokens excluded by rune count",
			title: "Ein Tag am See",
			want:  []string{},
		},
		{
			name:  "empty title",
			title: "",
			want:  []string{},
		},
		{
			name:  "four rune tokens kept",
			title: "Yoga oder Lauf",
			want:  []string{"yoga", "lauf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.title)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}
