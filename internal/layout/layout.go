package layout

import (
	"errors"
	"fmt"

	"github.com/hupe1980/soa/internal/conv"
)

var (
	// ErrInvalidAlignment is returned when the alignment is not a positive power of two.
	ErrInvalidAlignment = errors.New("layout: alignment must be a positive power of two")
	// ErrInvalidSpec is returned when a field spec is malformed.
	ErrInvalidSpec = errors.New("layout: invalid field spec")
)

// Policy selects how jagged field footprints are accounted.
type Policy uint8

const (
	// FootprintCompact aligns the total element count of a jagged field once.
	FootprintCompact Policy = iota
	// FootprintPerRecord aligns every record's chunk individually and sums them.
	FootprintPerRecord
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case FootprintCompact:
		return "compact"
	case FootprintPerRecord:
		return "per-record"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name as returned by String.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "compact", "":
		return FootprintCompact, true
	case "per-record", "per_record", "perrecord":
		return FootprintPerRecord, true
	default:
		return FootprintCompact, false
	}
}

// Shape distinguishes fixed-size fields from jagged ones.
type Shape uint8

const (
	// Fixed fields contribute PerRecord elements for every record.
	Fixed Shape = iota
	// Jagged fields contribute a record-dependent number of elements.
	Jagged
)

// Spec describes one field for planning purposes.
type Spec struct {
	Name     string
	ElemSize int   // bytes per element
	Shape    Shape // Fixed or Jagged
	// PerRecord is the number of elements per record for Fixed fields:
	// 1 for scalars, D*D for D×D matrices. Ignored for Jagged fields.
	PerRecord int
}

// Extent locates one record's slice inside a jagged field's dense array.
// Offset and Length are in elements, not bytes.
type Extent struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// End returns Offset+Length.
func (e Extent) End() int { return e.Offset + e.Length }

// Entry is the size table row of one field.
type Entry struct {
	ElementCount  int `json:"elements"`
	ByteFootprint int `json:"footprint"`
	ByteOffset    int `json:"offset"`
}

// Plan is the complete layout of one storage buffer.
type Plan struct {
	Records    int
	Alignment  int
	Policy     Policy
	Specs      []Spec
	Entries    []Entry
	Extents    [][]Extent // nil for fixed fields
	TotalBytes int
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Align rounds n up to the next multiple of alignment, which must be a power of two.
func Align(n, alignment int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

func alignChecked(n, alignment int) (int, error) {
	padded, err := conv.Add(n, alignment-1)
	if err != nil {
		return 0, err
	}
	return padded &^ (alignment - 1), nil
}

// Compute plans the layout of records records over specs.
//
// lengths holds, for every jagged spec, the per-record element counts in
// record order (lengths[k] for spec k; ignored for fixed specs). Fields are
// laid out in spec order; each starts at the running byte offset, which only
// ever advances by aligned footprints.
func Compute(records int, specs []Spec, lengths [][]int, alignment int, policy Policy) (*Plan, error) {
	if !IsPowerOfTwo(alignment) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, alignment)
	}
	if records < 0 {
		return nil, fmt.Errorf("%w: negative record count %d", ErrInvalidSpec, records)
	}

	p := &Plan{
		Records:   records,
		Alignment: alignment,
		Policy:    policy,
		Specs:     specs,
		Entries:   make([]Entry, len(specs)),
		Extents:   make([][]Extent, len(specs)),
	}

	offset := 0
	for k, s := range specs {
		if s.ElemSize <= 0 {
			return nil, fmt.Errorf("%w: field %q has element size %d", ErrInvalidSpec, s.Name, s.ElemSize)
		}

		var (
			e   Entry
			err error
		)
		switch s.Shape {
		case Fixed:
			e, err = planFixed(records, s, alignment)
		case Jagged:
			if k >= len(lengths) || len(lengths[k]) != records {
				return nil, fmt.Errorf("%w: field %q needs %d record lengths", ErrInvalidSpec, s.Name, records)
			}
			e, p.Extents[k], err = planJagged(lengths[k], s, alignment, policy)
		default:
			return nil, fmt.Errorf("%w: field %q has unknown shape %d", ErrInvalidSpec, s.Name, s.Shape)
		}
		if err != nil {
			return nil, fmt.Errorf("layout: field %q: %w", s.Name, err)
		}

		e.ByteOffset = offset
		p.Entries[k] = e
		if offset, err = conv.Add(offset, e.ByteFootprint); err != nil {
			return nil, fmt.Errorf("layout: field %q: %w", s.Name, err)
		}
	}
	p.TotalBytes = offset

	return p, nil
}

func planFixed(records int, s Spec, alignment int) (Entry, error) {
	if s.PerRecord <= 0 {
		return Entry{}, fmt.Errorf("%w: %d elements per record", ErrInvalidSpec, s.PerRecord)
	}
	count, err := conv.Mul(records, s.PerRecord)
	if err != nil {
		return Entry{}, err
	}
	raw, err := conv.Mul(count, s.ElemSize)
	if err != nil {
		return Entry{}, err
	}
	footprint, err := alignChecked(raw, alignment)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ElementCount: count, ByteFootprint: footprint}, nil
}

func planJagged(lengths []int, s Spec, alignment int, policy Policy) (Entry, []Extent, error) {
	extents := make([]Extent, 0, len(lengths))

	var (
		running   int
		footprint int
	)
	for i, n := range lengths {
		if n < 0 {
			return Entry{}, nil, fmt.Errorf("%w: record %d has negative length %d", ErrInvalidSpec, i, n)
		}
		extents = append(extents, Extent{Offset: running, Length: n})

		if policy == FootprintPerRecord {
			raw, err := conv.Mul(n, s.ElemSize)
			if err != nil {
				return Entry{}, nil, err
			}
			chunk, err := alignChecked(raw, alignment)
			if err != nil {
				return Entry{}, nil, err
			}
			if footprint, err = conv.Add(footprint, chunk); err != nil {
				return Entry{}, nil, err
			}
		}

		var err error
		if running, err = conv.Add(running, n); err != nil {
			return Entry{}, nil, err
		}
	}

	if policy != FootprintPerRecord {
		raw, err := conv.Mul(running, s.ElemSize)
		if err != nil {
			return Entry{}, nil, err
		}
		if footprint, err = alignChecked(raw, alignment); err != nil {
			return Entry{}, nil, err
		}
	}

	return Entry{ElementCount: running, ByteFootprint: footprint}, extents, nil
}

// Padding returns the number of padding bytes reserved by field k.
func (p *Plan) Padding(k int) int {
	return p.Entries[k].ByteFootprint - p.Entries[k].ElementCount*p.Specs[k].ElemSize
}

// TotalPadding returns the padding bytes across all fields.
func (p *Plan) TotalPadding() int {
	total := 0
	for k := range p.Entries {
		total += p.Padding(k)
	}
	return total
}

// Validate checks the structural invariants of the plan: every field starts
// on an aligned offset, ranges are disjoint and adjacent in field order,
// footprints sum to TotalBytes and extents are contiguous.
func (p *Plan) Validate() error {
	next := 0
	for k, e := range p.Entries {
		if e.ByteOffset%p.Alignment != 0 {
			return fmt.Errorf("layout: field %q starts at unaligned offset %d", p.Specs[k].Name, e.ByteOffset)
		}
		if e.ByteOffset != next {
			return fmt.Errorf("layout: field %q starts at %d, expected %d", p.Specs[k].Name, e.ByteOffset, next)
		}
		if e.ElementCount*p.Specs[k].ElemSize > e.ByteFootprint {
			return fmt.Errorf("layout: field %q overflows its footprint", p.Specs[k].Name)
		}
		next += e.ByteFootprint

		cursor := 0
		for i, x := range p.Extents[k] {
			if x.Offset != cursor {
				return fmt.Errorf("layout: field %q record %d starts at %d, expected %d", p.Specs[k].Name, i, x.Offset, cursor)
			}
			cursor = x.End()
		}
		if p.Extents[k] != nil && cursor != e.ElementCount {
			return fmt.Errorf("layout: field %q extents cover %d of %d elements", p.Specs[k].Name, cursor, e.ElementCount)
		}
	}
	if next != p.TotalBytes {
		return fmt.Errorf("layout: footprints sum to %d, total is %d", next, p.TotalBytes)
	}
	return nil
}
