package frame

import (
	"fmt"
	"sort"
	"time"

	apperrors "tvaudience/internal/errors"
)

// Category is a value drawn from a finite, unordered label set
type Category struct {
	Code  int
	Label string
}

// String returns the category label
func (c Category) String() string {
	return c.Label
}

// Index is the row index of a Frame. A nil Times slice means the frame is
// indexed by row position.
type Index struct {
	Name  string
	Times []time.Time
	Freq  time.Duration
}

// IsTime reports whether the index holds timestamps
func (ix Index) IsTime() bool {
	return ix.Times != nil
}

// Frame is an ordered, column-named table
type Frame struct {
	columns    []string
	pos        map[string]int
	rows       [][]any
	index      Index
	categories map[string][]string

	// Meta holds the workbook metadata row the table was read with.
	Meta map[string]string
}

// New creates a positionally indexed frame. Every row must have exactly one
// cell per column and column names must be unique.
func New(columns []string, rows [][]any) (*Frame, error) {
	pos := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := pos[c]; dup {
			return nil, apperrors.NewConsistencyError(fmt.Sprintf("duplicate column %q", c))
		}
		pos[c] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, apperrors.NewConsistencyError(
				fmt.Sprintf("row %d has %d cells, expected %d", i, len(r), len(columns)))
		}
	}
	return &Frame{
		columns:    append([]string(nil), columns...),
		pos:        pos,
		rows:       rows,
		categories: make(map[string][]string),
		Meta:       make(map[string]string),
	}, nil
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.rows)
}

// Columns returns a copy of the column names in order
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Has reports whether the frame has a column with the given name
func (f *Frame) Has(name string) bool {
	_, ok := f.pos[name]
	return ok
}

// Row returns a copy of row i
func (f *Frame) Row(i int) []any {
	return append([]any(nil), f.rows[i]...)
}

// Value returns the cell of row i in the named column
func (f *Frame) Value(i int, name string) (any, error) {
	c, err := f.colPos(name)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(f.rows) {
		return nil, apperrors.NewLookupError(fmt.Sprintf("row %d out of range", i))
	}
	return f.rows[i][c], nil
}

// Column returns a copy of the values of the named column
func (f *Frame) Column(name string) ([]any, error) {
	c, err := f.colPos(name)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[c]
	}
	return out, nil
}

// Rename renames columns in place. Names absent from the frame are ignored,
// matching how vendor exports omit optional metrics.
func (f *Frame) Rename(mapping map[string]string) error {
	next := append([]string(nil), f.columns...)
	for i, c := range next {
		if to, ok := mapping[c]; ok {
			next[i] = to
		}
	}
	pos := make(map[string]int, len(next))
	for i, c := range next {
		if _, dup := pos[c]; dup {
			return apperrors.NewConsistencyError(fmt.Sprintf("rename produces duplicate column %q", c))
		}
		pos[c] = i
	}
	for from, to := range mapping {
		if cats, ok := f.categories[from]; ok {
			delete(f.categories, from)
			f.categories[to] = cats
		}
	}
	f.columns = next
	f.pos = pos
	return nil
}

// Apply replaces every cell of the named column with fn's result. The first
// error aborts the transformation and reports the offending row.
func (f *Frame) Apply(name string, fn func(v any) (any, error)) error {
	c, err := f.colPos(name)
	if err != nil {
		return err
	}
	converted := make([]any, len(f.rows))
	for i, r := range f.rows {
		v, err := fn(r[c])
		if err != nil {
			return fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		converted[i] = v
	}
	for i, r := range f.rows {
		r[c] = converted[i]
	}
	return nil
}

// SetColumn appends a column, or replaces it when the name already exists
func (f *Frame) SetColumn(name string, values []any) error {
	if len(values) != len(f.rows) {
		return apperrors.NewConsistencyError(
			fmt.Sprintf("column %q has %d values, frame has %d rows", name, len(values), len(f.rows)))
	}
	if c, ok := f.pos[name]; ok {
		for i, r := range f.rows {
			r[c] = values[i]
		}
		delete(f.categories, name)
		return nil
	}
	f.pos[name] = len(f.columns)
	f.columns = append(f.columns, name)
	for i := range f.rows {
		f.rows[i] = append(f.rows[i], values[i])
	}
	return nil
}

// Drop removes the named column
func (f *Frame) Drop(name string) error {
	c, err := f.colPos(name)
	if err != nil {
		return err
	}
	f.columns = append(f.columns[:c:c], f.columns[c+1:]...)
	for i, r := range f.rows {
		f.rows[i] = append(r[:c:c], r[c+1:]...)
	}
	f.pos = make(map[string]int, len(f.columns))
	for i, col := range f.columns {
		f.pos[col] = i
	}
	delete(f.categories, name)
	return nil
}

// Categorize encodes a column as Category values. Non-string cells are
// labelled by their FormatValue rendering. The category set is the sorted set
// of distinct labels; missing cells stay nil.
func (f *Frame) Categorize(name string) error {
	c, err := f.colPos(name)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{})
	for _, r := range f.rows {
		if l, ok := categoryLabel(r[c]); ok {
			seen[l] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	codes := make(map[string]int, len(labels))
	for i, l := range labels {
		codes[l] = i
	}
	for _, r := range f.rows {
		if l, ok := categoryLabel(r[c]); ok {
			r[c] = Category{Code: codes[l], Label: l}
		}
	}
	f.categories[name] = labels
	return nil
}

func categoryLabel(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case Category:
		return v.Label, true
	default:
		return FormatValue(v), true
	}
}

// Categories returns the category set of a categorized column, or nil
func (f *Frame) Categories(name string) []string {
	return append([]string(nil), f.categories[name]...)
}

// SetTimeIndex moves a column of time.Time values into the index
func (f *Frame) SetTimeIndex(name string) error {
	values, err := f.Column(name)
	if err != nil {
		return err
	}
	times := make([]time.Time, len(values))
	for i, v := range values {
		t, ok := v.(time.Time)
		if !ok {
			return apperrors.NewConsistencyError(
				fmt.Sprintf("column %q row %d: index value is %T, not a timestamp", name, i, v))
		}
		times[i] = t
	}
	if err := f.Drop(name); err != nil {
		return err
	}
	f.index = Index{Name: name, Times: times}
	return nil
}

// Index returns a copy of the frame index
func (f *Frame) Index() Index {
	ix := f.index
	if ix.Times != nil {
		ix.Times = append([]time.Time(nil), ix.Times...)
	}
	return ix
}

// AssertFrequency checks that consecutive index timestamps are exactly step
// apart and records step as the index frequency. Gaps, duplicates and
// out-of-order timestamps are reported with their position.
func (f *Frame) AssertFrequency(step time.Duration) error {
	if !f.index.IsTime() {
		return apperrors.NewConsistencyError("frequency requires a timestamp index")
	}
	times := f.index.Times
	for i := 1; i < len(times); i++ {
		if d := times[i].Sub(times[i-1]); d != step {
			return apperrors.NewConsistencyError(
				fmt.Sprintf("index is not uniformly spaced at %s: %s follows %s (delta %s)",
					step, FormatTimestamp(times[i]), FormatTimestamp(times[i-1]), d)).
				WithContext("position", i)
		}
	}
	f.index.Freq = step
	return nil
}

// Clone returns a deep copy of the frame's structure; cell values are
// immutable Go values and are shared.
func (f *Frame) Clone() *Frame {
	rows := make([][]any, len(f.rows))
	for i, r := range f.rows {
		rows[i] = append(make([]any, 0, len(r)+8), r...)
	}
	pos := make(map[string]int, len(f.pos))
	for k, v := range f.pos {
		pos[k] = v
	}
	cats := make(map[string][]string, len(f.categories))
	for k, v := range f.categories {
		cats[k] = append([]string(nil), v...)
	}
	meta := make(map[string]string, len(f.Meta))
	for k, v := range f.Meta {
		meta[k] = v
	}
	return &Frame{
		columns:    append([]string(nil), f.columns...),
		pos:        pos,
		rows:       rows,
		index:      f.Index(),
		categories: cats,
		Meta:       meta,
	}
}

// Records renders the frame as CSV-ready strings: the header starts with the
// index name (empty for a positional index) and every row starts with its
// index label.
func (f *Frame) Records() ([]string, [][]string) {
	header := make([]string, 0, len(f.columns)+1)
	header = append(header, f.index.Name)
	header = append(header, f.columns...)

	records := make([][]string, len(f.rows))
	for i, r := range f.rows {
		rec := make([]string, 0, len(r)+1)
		if f.index.IsTime() {
			rec = append(rec, FormatTimestamp(f.index.Times[i]))
		} else {
			rec = append(rec, fmt.Sprintf("%d", i))
		}
		for _, v := range r {
			rec = append(rec, FormatValue(v))
		}
		records[i] = rec
	}
	return header, records
}

func (f *Frame) colPos(name string) (int, error) {
	c, ok := f.pos[name]
	if !ok {
		return 0, apperrors.NewLookupError(fmt.Sprintf("column %q not found", name))
	}
	return c, nil
}
