package citymatch

import "strings"

// NameContainsWord reports whether name, once normalized, contains the
// normalized word. A name that is not a string is treated as "".
// Matching is plain substring containment, so "kai" also matches inside
// compounds such as "Makaiwa".
func NameContainsWord(name any, word string) bool {
	s, _ := name.(string)
	return strings.Contains(Normalize(s), Normalize(word))
}
