package fieldtype

// keyKind discriminates the value space a Key lives in.
type keyKind int

const (
	kindMissing keyKind = iota
	kindNumber
	kindString
)

// Key is a totally ordered sort-key projection. Keys of one field share a
// kind; the cross-kind ordering only matters so that mixed inputs still
// sort deterministically.
type Key struct {
	kind keyKind
	num  float64
	str  string
}

// MissingKey is the sentinel for absent or unorderable values. It compares
// after every concrete key, so empties sort last in ascending order.
func MissingKey() Key {
	return Key{kind: kindMissing}
}

// NumberKey wraps a numeric ordering value.
func NumberKey(n float64) Key {
	return Key{kind: kindNumber, num: n}
}

// StringKey wraps a lexicographic ordering value.
func StringKey(s string) Key {
	return Key{kind: kindString, str: s}
}

// IsMissing reports whether the key is the missing sentinel.
func (k Key) IsMissing() bool {
	return k.kind == kindMissing
}

// Less orders keys ascending, missing last.
func (k Key) Less(o Key) bool {
	if k.kind == kindMissing {
		return false
	}
	if o.kind == kindMissing {
		return true
	}
	if k.kind != o.kind {
		return k.kind < o.kind
	}
	switch k.kind {
	case kindNumber:
		return k.num < o.num
	default:
		return k.str < o.str
	}
}

// Equal reports whether two keys occupy the same position in the order.
// Two missing keys are equal: empties form one bucket.
func (k Key) Equal(o Key) bool {
	return !k.Less(o) && !o.Less(k)
}
