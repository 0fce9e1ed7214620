// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package engine

// SlotForTime derives a TimeSlot from a clock-time string like "19:00".
// The leading hour digits are parsed (an optional ":MM" is ignored); if the
// string contains no leading digits, no slot is assigned.
//
// Hour buckets (half-open intervals, 24h clock):
//
//	[6,11)  morning
//	[11,14) midday
//	[14,17) afternoon
//	[17,21) evening
//	[21,24) and [0,6) night
func SlotForTime(clock string) (TimeSlot, bool) {
	hour := -1
	for _, r := range clock {
		if r < '0' || r > '9' {
			break
		}
		if hour < 0 {
			hour = 0
		}
		hour = hour*10 + int(r-'0')
		if hour > 99 {
			break
		}
	}

	if hour < 0 || hour > 23 {
		return "", false
	}

	switch {
	case hour >= 6 && hour < 11:
		return SlotMorning, true
	case hour >= 11 && hour < 14:
		return SlotMidday, true
	case hour >= 14 && hour < 17:
		return SlotAfternoon, true
	case hour >= 17 && hour < 21:
		return SlotEvening, true
	default:
		return SlotNight, true
	}
}
