package citymatch

import "math"

// DefaultWord is the word HasKai and PopulationCitiesKai look for.
const DefaultWord = "kai"

// Summary maps an island name to the total population of its matching cities.
type Summary map[string]float64

// Total returns the sum of all island populations, capped at math.MaxFloat64.
func (s Summary) Total() float64 {
	var total float64
	for _, pop := range s {
		total = addPopulation(total, pop)
	}
	return total
}

// addPopulation adds two finite non-negative populations. A sum that
// overflows is capped at math.MaxFloat64 so that results stay finite.
func addPopulation(a, b float64) float64 {
	sum := a + b
	if math.IsInf(sum, 1) {
		return math.MaxFloat64
	}
	return sum
}

// HasKai reports whether any city name contains "kai".
func HasKai(records []any) bool {
	return HasWord(records, DefaultWord)
}

// HasWord reports whether any object in records has a name containing word.
// Items that are not objects are skipped. It stops at the first match.
func HasWord(records []any, word string) bool {
	for _, item := range records {
		rec, ok := AsRecord(item)
		if !ok {
			continue
		}
		if NameContainsWord(rec.Name(), word) {
			return true
		}
	}
	return false
}

// PopulationCitiesKai sums, per island, the population of cities whose name
// contains "kai".
func PopulationCitiesKai(records []any) Summary {
	return PopulationByIsland(records, DefaultWord)
}

// PopulationByIsland sums, per island, the population of cities whose name
// contains word.
//
// Checks run in this order for every item:
// 1. Items that are not objects are skipped.
// 2. Items whose name does not match are skipped.
// 3. Items with a negative population are skipped and create no island key.
// 4. Items whose population is missing or not a finite number add 0, but
// their island key is still created.
//
// The island comes from Record.Island, so blank or missing islands are
// grouped under UnknownRegion. Island sums that would overflow are capped at
// math.MaxFloat64. The returned map is never nil.
func PopulationByIsland(records []any, word string) Summary {
	summary := make(Summary)
	for _, item := range records {
		rec, ok := AsRecord(item)
		if !ok {
			continue
		}
		if !NameContainsWord(rec.Name(), word) {
			continue
		}
		pop, _ := rec.Population()
		if pop < 0 {
			continue
		}
		island := rec.Island()
		summary[island] = addPopulation(summary[island], pop)
	}
	return summary
}

// FilterByIsland returns the objects whose island field is exactly island.
// The input slice is not modified.
func FilterByIsland(records []any, island string) []any {
	var filtered []any
	for _, item := range records {
		rec, ok := AsRecord(item)
		if !ok {
			continue
		}
		if s, ok := rec.Text("island"); ok && s == island {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
