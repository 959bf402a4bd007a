package wire

import "fmt"

// Rule selects how a Field is read from the wire.
type Rule int

const (
	// RuleString is a uint32 length-prefixed byte string.
	RuleString Rule = iota
	// RuleFixed is Field.Size raw bytes with no prefix.
	RuleFixed
	// RuleMPInt is a length-prefixed multiple precision integer.
	RuleMPInt
)

func (r Rule) String() string {
	switch r {
	case RuleString:
		return "string"
	case RuleFixed:
		return "fixed"
	case RuleMPInt:
		return "mpint"
	}
	return fmt.Sprintf("rule-%d", int(r))
}

// Field is one entry of a Schema.
type Field struct {
	Name string
	Rule Rule
	// Size is the byte count for RuleFixed.
	Size int
	// Expect, when set on a RuleString field, is the only accepted value.
	Expect string
}

// Value is a decoded field. Bytes is set for string and fixed rules, Int
// for mpints.
type Value struct {
	Name  string
	Bytes []byte
	Int   MPInt
}

// Record holds decoded values in schema order.
type Record []Value

// Get returns the value decoded for the named field.
func (r Record) Get(name string) (Value, bool) {
	for _, v := range r {
		if v.Name == name {
			return v, true
		}
	}
	return Value{}, false
}

// Text returns the named field's bytes as a string, or "" if absent.
func (r Record) Text(name string) string {
	v, _ := r.Get(name)
	return string(v.Bytes)
}

// MPInt returns the named mpint field, or the zero value if absent.
func (r Record) MPInt(name string) MPInt {
	v, _ := r.Get(name)
	return v.Int
}

// Schema is an ordered list of fields decoded front to back over a single
// cursor.
type Schema []Field

// Decode reads every field in order and returns the unread input. Any
// failure aborts the whole record.
func (s Schema) Decode(in []byte) (Record, []byte, error) {
	rec := make(Record, 0, len(s))
	for _, f := range s {
		v := Value{Name: f.Name}
		var err error
		switch f.Rule {
		case RuleString:
			v.Bytes, in, err = ParseString(in)
			if err == nil && f.Expect != "" && string(v.Bytes) != f.Expect {
				err = fmt.Errorf("%w: got %q, want %q", ErrMalformedField, v.Bytes, f.Expect)
			}
		case RuleFixed:
			v.Bytes, in, err = ParseFixed(in, f.Size)
		case RuleMPInt:
			v.Int, in, err = ParseMPInt(in)
		default:
			err = fmt.Errorf("%w: unknown rule %v", ErrMalformedField, f.Rule)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		rec = append(rec, v)
	}
	return rec, in, nil
}

// DecodeAll is Decode, but input left over after the last field is an
// error.
func (s Schema) DecodeAll(in []byte) (Record, error) {
	rec, rest, err := s.Decode(in)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedField, len(rest))
	}
	return rec, nil
}
