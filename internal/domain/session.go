package domain

// SearchSession holds one requester's ranked candidate ids and the zero-based
// cursor. A new search always replaces the session wholesale.
type SearchSession struct {
	Results []int64 `json:"results"`
	Cursor  int     `json:"cursor"`
}

// Current returns the candidate id at the cursor, or ErrExhausted once the
// cursor has moved past the last result.
func (s *SearchSession) Current() (int64, error) {
	if s.Cursor >= len(s.Results) {
		return 0, ErrExhausted
	}
	return s.Results[s.Cursor], nil
}

// Advance moves the cursor forward and reports whether a candidate remains.
// Exhaustion is a normal terminal condition, not an error; repeated calls
// stay exhausted without wrapping around.
func (s *SearchSession) Advance() bool {
	if s.Cursor < len(s.Results) {
		s.Cursor++
	}
	return s.Cursor < len(s.Results)
}
