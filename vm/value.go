package vm

// Object represents a runtime value as a single tagged 64-bit word.
//
// The low-order bits discriminate the kind of value:
//   - Integer:   xxxx...xx0  (payload is the word shifted right by one)
//   - Character: cccc...011  (payload in the bits above the tag)
//   - False:     0101
//   - True:      1101
//   - EmptyList: 00111
//   - Undefined: 01111
//   - Heap:      iiii...001  (i is an index into the runtime's heap arena)
//
// Equality is word equality: heap objects compare by identity, immediates by
// value.
type Object uint64

const (
	tagMask      uint64 = 0x7
	tagHeap      uint64 = 0x1
	tagCharacter uint64 = 0x3
	tagBoolean   uint64 = 0x5
	tagSpecial   uint64 = 0x7

	heapShift      = 3
	characterShift = 3
)

// Pre-defined immediate values
const (
	False     Object = 0x5
	True      Object = 0xd
	EmptyList Object = 0x7
	Undefined Object = 0xf
)

// Integer range (63-bit signed; the low bit of the word is the tag).
const (
	MaxInteger int64 = (1 << 62) - 1
	MinInteger int64 = -(1 << 62)
)

// Type identifies the variant of an Object.
type Type int

const (
	TypeInteger Type = iota
	TypeCharacter
	TypeFalse
	TypeTrue
	TypeEmptyList
	TypeUndefined

	TypeSymbol
	TypeString
	TypePair
	TypeVector
	TypeError
)

var typeNames = [...]string{
	TypeInteger:   "integer",
	TypeCharacter: "character",
	TypeFalse:     "false",
	TypeTrue:      "true",
	TypeEmptyList: "empty-list",
	TypeUndefined: "undefined",
	TypeSymbol:    "symbol",
	TypeString:    "string",
	TypePair:      "pair",
	TypeVector:    "vector",
	TypeError:     "error",
}

func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// ---------------------------------------------------------------------------
// Immediate constructors
// ---------------------------------------------------------------------------

// Integer creates an integer Object.
// Panics if n is outside the integer range.
func Integer(n int64) Object {
	if n > MaxInteger || n < MinInteger {
		panic("Integer: value out of range")
	}
	return Object(uint64(n) << 1)
}

// TryInteger creates an integer Object, returning false if n is out of range.
func TryInteger(n int64) (Object, bool) {
	if n > MaxInteger || n < MinInteger {
		return Undefined, false
	}
	return Object(uint64(n) << 1), true
}

// Character creates a character Object from a code point.
func Character(c rune) Object {
	return Object(uint64(uint32(c))<<characterShift | tagCharacter)
}

// Boolean returns True or False.
func Boolean(b bool) Object {
	if b {
		return True
	}
	return False
}

func heapObject(index uint32) Object {
	return Object(uint64(index)<<heapShift | tagHeap)
}

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsInteger returns true if o represents an integer.
func (o Object) IsInteger() bool {
	return uint64(o)&1 == 0
}

// IsCharacter returns true if o represents a character.
func (o Object) IsCharacter() bool {
	return uint64(o)&tagMask == tagCharacter
}

// IsHeap returns true if o references a heap block.
func (o Object) IsHeap() bool {
	return uint64(o)&tagMask == tagHeap
}

// Immediate returns true if o carries its payload in the word itself.
func (o Object) Immediate() bool {
	return !o.IsHeap()
}

// IsBoolean returns true if o is True or False.
func (o Object) IsBoolean() bool {
	return o == True || o == False
}

// Defined returns true unless o is Undefined.
func (o Object) Defined() bool {
	return o != Undefined
}

// Truthy returns true for every value except False.
func (o Object) Truthy() bool {
	return o != False
}

// ImmediateType decodes the discriminant of an immediate value. For heap
// references it returns false; their variant lives in the block header and
// is read through Runtime.Type.
func (o Object) ImmediateType() (Type, bool) {
	switch uint64(o) & tagMask {
	case 0x0, 0x2, 0x4, 0x6:
		return TypeInteger, true
	case tagHeap:
		return 0, false
	case tagCharacter:
		return TypeCharacter, true
	case tagBoolean:
		if o == False {
			return TypeFalse, true
		}
		return TypeTrue, true
	}
	if o == EmptyList {
		return TypeEmptyList, true
	}
	return TypeUndefined, true
}

// ---------------------------------------------------------------------------
// Immediate payloads
// ---------------------------------------------------------------------------

// Int returns o as an int64.
// Panics if o is not an integer.
func (o Object) Int() int64 {
	if !o.IsInteger() {
		panic("Object.Int: not an integer")
	}
	return int64(o) >> 1
}

// Rune returns o as a character code point.
// Panics if o is not a character.
func (o Object) Rune() rune {
	if !o.IsCharacter() {
		panic("Object.Rune: not a character")
	}
	return rune(uint32(uint64(o) >> characterShift))
}

// index returns the heap arena index encoded in o.
func (o Object) index() uint32 {
	if !o.IsHeap() {
		panic("Object.index: not a heap reference")
	}
	return uint32(uint64(o) >> heapShift)
}
