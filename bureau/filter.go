package bureau

import (
	"encoding/json"
	"errors"
	"regexp"
	"slices"
	"strings"
)

/* ──────────── match modes ──────────── */

// MatchMode selects how a record's categories are compared with the
// selected categories.
type MatchMode string

const (
	// Subset keeps records carrying at least the selected categories.
	Subset MatchMode = "avec-autres"
	// Exact keeps records carrying exactly the selected categories.
	Exact MatchMode = "exact"
)

var ErrUnknownMatchMode = errors.New("unknown match mode")

// ParseMatchMode accepts "avec-autres" (or "subset") and "exact".
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Subset), "subset":
		return Subset, nil
	case string(Exact):
		return Exact, nil
	}
	return Subset, ErrUnknownMatchMode
}

/* ──────────── selections ──────────── */

// Selection is a set of chosen values that remembers the order in which the
// user picked them. The zero value is an empty selection.
type Selection struct {
	order []string
	set   map[string]struct{}
}

// NewSelection returns a selection holding vals, duplicates ignored.
func NewSelection(vals ...string) Selection {
	var s Selection
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

func (s *Selection) Has(v string) bool {
	_, ok := s.set[v]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

// Add inserts v if it is not already selected.
func (s *Selection) Add(v string) {
	if s.Has(v) {
		return
	}
	if s.set == nil {
		s.set = map[string]struct{}{}
	}
	s.set[v] = struct{}{}
	s.order = append(s.order, v)
}

// Remove drops v; removing an unselected value is a no-op.
func (s *Selection) Remove(v string) {
	if !s.Has(v) {
		return
	}
	delete(s.set, v)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == v })
}

// Toggle adds v if absent and removes it otherwise.
func (s *Selection) Toggle(v string) {
	if s.Has(v) {
		s.Remove(v)
		return
	}
	s.Add(v)
}

func (s *Selection) Clear() {
	s.order = nil
	s.set = nil
}

// Values returns the selected values in selection order.
func (s *Selection) Values() []string {
	return append([]string{}, s.order...)
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s *Selection) UnmarshalJSON(b []byte) error {
	var vals []string
	if err := json.Unmarshal(b, &vals); err != nil {
		return err
	}
	*s = NewSelection(vals...)
	return nil
}

// FilterState is the current set of user choices.
type FilterState struct {
	Cities     Selection `json:"cities"`
	Categories Selection `json:"categories"`
	Mode       MatchMode `json:"mode"`
}

// NewFilterState returns the default state: nothing selected, Subset mode.
func NewFilterState() FilterState {
	return FilterState{Mode: Subset}
}

// Clone returns a deep copy. Selections copied by value share their map and
// their order array, so a Remove on the copy would rewrite the original.
func (st FilterState) Clone() FilterState {
	return FilterState{
		Cities:     NewSelection(st.Cities.order...),
		Categories: NewSelection(st.Categories.order...),
		Mode:       st.Mode,
	}
}

/* ──────────── option vocabularies ──────────── */

// CityOptions lists the distinct non-empty cities in first-seen order.
func CityOptions(records []Record) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range records {
		if r.City == "" {
			continue
		}
		if _, ok := seen[r.City]; ok {
			continue
		}
		seen[r.City] = struct{}{}
		out = append(out, r.City)
	}
	return out
}

var digitRunRE = regexp.MustCompile(`\d+`)

// numKey is the first run of digits in tok without leading zeros; "" stands
// for zero, which is also what tokens without digits get.
func numKey(tok string) string {
	return strings.TrimLeft(digitRunRE.FindString(tok), "0")
}

// compareNum orders two digit strings by numeric value without parsing, so
// arbitrarily long runs never overflow.
func compareNum(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

// CategoryOptions lists the distinct category tokens sorted by the number
// they carry, so D3 comes before D14. Tokens with the same number keep their
// first-seen order.
func CategoryOptions(records []Record) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range records {
		for _, c := range r.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return compareNum(numKey(a), numKey(b))
	})
	return out
}

/* ──────────── predicates ──────────── */

func matchCity(r Record, cities *Selection) bool {
	return cities.Len() == 0 || cities.Has(r.City)
}

// matchCategories compares by length then membership. A record listing the
// same token twice can therefore fail an Exact match it would pass as a set.
func matchCategories(r Record, cats *Selection, mode MatchMode) bool {
	if cats.Len() == 0 {
		return true
	}
	if mode == Exact {
		if len(r.Categories) != cats.Len() {
			return false
		}
		for _, c := range r.Categories {
			if !cats.Has(c) {
				return false
			}
		}
		return true
	}
	hits := 0
	for i, c := range r.Categories {
		if cats.Has(c) && !slices.Contains(r.Categories[:i], c) {
			hits++
		}
	}
	return hits == cats.Len()
}

// Matches reports whether r passes both the city and the category filter.
func (st *FilterState) Matches(r Record) bool {
	return matchCity(r, &st.Cities) && matchCategories(r, &st.Categories, st.Mode)
}

// Apply returns the records visible under st, in their original order.
func Apply(records []Record, st FilterState) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if st.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

/* ──────────── view ──────────── */

// View is everything a renderer needs for one filter pass.
type View struct {
	Total              int       `json:"total"`
	CityOptions        []string  `json:"city_options"`
	CategoryOptions    []string  `json:"category_options"`
	SelectedCities     []string  `json:"selected_cities"`
	SelectedCategories []string  `json:"selected_categories"`
	Mode               MatchMode `json:"mode"`
	Visible            []Record  `json:"visible"`
	NoResults          bool      `json:"no_results"`
}

// BuildView derives the option lists and the visible records. NoResults is
// only set when records are loaded and the filters hide all of them.
func BuildView(records []Record, st FilterState) View {
	mode := st.Mode
	if mode != Exact {
		mode = Subset
	}
	visible := Apply(records, st)
	return View{
		Total:              len(records),
		CityOptions:        CityOptions(records),
		CategoryOptions:    CategoryOptions(records),
		SelectedCities:     st.Cities.Values(),
		SelectedCategories: st.Categories.Values(),
		Mode:               mode,
		Visible:            visible,
		NoResults:          len(visible) == 0 && len(records) > 0,
	}
}
