package condition

import "strings"

// Answer is one submitted question response. Multi-select questions may
// carry several values, or arrive as several Answers sharing a key.
type Answer struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Whole returns the answer's value list as a single comparable string.
func (a Answer) Whole() string {
	if len(a.Values) == 1 {
		return a.Values[0]
	}
	return strings.Join(a.Values, ",")
}

// Answers is an ordered answer set. Keys are not unique.
type Answers []Answer

// Lookup returns every answer whose key equals ref, in submission order.
func (as Answers) Lookup(ref string) []Answer {
	var out []Answer
	for _, a := range as {
		if a.Key == ref {
			out = append(out, a)
		}
	}
	return out
}

// Values flattens the values of every answer for ref.
func (as Answers) Values(ref string) []string {
	var out []string
	for _, a := range as.Lookup(ref) {
		out = append(out, a.Values...)
	}
	return out
}

// Merge returns a copy of as where every key present in next replaces the
// earlier entries for that key. Used when a respondent resubmits a page.
func (as Answers) Merge(next Answers) Answers {
	replaced := make(map[string]struct{}, len(next))
	for _, a := range next {
		replaced[a.Key] = struct{}{}
	}
	out := make(Answers, 0, len(as)+len(next))
	for _, a := range as {
		if _, ok := replaced[a.Key]; ok {
			continue
		}
		out = append(out, a)
	}
	for _, a := range next {
		out = append(out, Answer{Key: a.Key, Values: append([]string(nil), a.Values...)})
	}
	return out
}
