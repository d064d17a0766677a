package machine

import (
	"iter"
	"maps"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/regmach/internal"
)

// Index is a register number. Non-negative indexes are the program
// registers, negative indexes are scratch registers.
type Index int

// String returns the source form of the register, ie "r3" or "r-1".
func (idx Index) String() string {
	return "r" + strconv.Itoa(int(idx))
}

// Scratch is true for the negative (hidden) registers.
func (idx Index) Scratch() bool {
	return idx < 0
}

// ParseIndex converts "r<digits>" or "r-<digits>" to a register index.
func ParseIndex(word string) (idx Index, err error) {
	digits, ok := strings.CutPrefix(word, "r")
	if !ok {
		err = ErrMalformedRegister
		return
	}

	negative := false
	if rest, ok := strings.CutPrefix(digits, "-"); ok {
		negative = true
		digits = rest
	}

	if len(digits) == 0 || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		err = ErrMalformedRegister
		return
	}

	value, perr := strconv.Atoi(digits)
	if perr != nil {
		err = ErrMalformedRegister
		return
	}

	if negative {
		if value == 0 {
			err = ErrMalformedRegister
			return
		}
		value = -value
	}

	idx = Index(value)
	return
}

// Store is the sparse register file. Unset registers read as zero.
type Store struct {
	value map[Index]*big.Int
	high  Index // Highest non-negative index accessed, -1 if none.
}

// NewStore creates a register file seeded with values for r0, r1, ...
func NewStore(values ...*big.Int) (st *Store) {
	st = &Store{
		value: make(map[Index]*big.Int, len(values)),
		high:  -1,
	}

	for n, value := range values {
		st.Set(Index(n), value)
	}

	return
}

func (st *Store) touch(idx Index) {
	if idx > st.high {
		st.high = idx
	}
}

// Get returns a copy of the register value.
func (st *Store) Get(idx Index) *big.Int {
	value, ok := st.value[idx]
	if !ok {
		return new(big.Int)
	}

	return new(big.Int).Set(value)
}

// Set stores a copy of value. A nil value stores zero.
// Registers hold naturals; a negative value panics. Use Seed to
// validate untrusted values.
func (st *Store) Set(idx Index, value *big.Int) {
	if value != nil && value.Sign() < 0 {
		panic("negative register value")
	}

	st.touch(idx)

	reg := st.slot(idx)
	if value == nil {
		reg.SetInt64(0)
		return
	}

	reg.Set(value)
}

func (st *Store) slot(idx Index) (reg *big.Int) {
	if st.value == nil {
		st.value = make(map[Index]*big.Int)
	}

	reg, ok := st.value[idx]
	if !ok {
		reg = new(big.Int)
		st.value[idx] = reg
	}

	return
}

// IsZero tests a register. The map is not modified, but the register is
// counted as accessed for output purposes.
func (st *Store) IsZero(idx Index) bool {
	st.touch(idx)

	value, ok := st.value[idx]
	return !ok || value.Sign() == 0
}

// Inc adds one to a register.
func (st *Store) Inc(idx Index) {
	st.touch(idx)

	reg := st.slot(idx)
	reg.Add(reg, big.NewInt(1))
}

// Dec subtracts one from a register, saturating at zero.
// Returns false if the register was already zero.
func (st *Store) Dec(idx Index) (ok bool) {
	if st.IsZero(idx) {
		return
	}

	reg := st.slot(idx)
	reg.Sub(reg, big.NewInt(1))

	return true
}

// High returns the highest non-negative register accessed, or -1.
func (st *Store) High() Index {
	return st.high
}

// Naturals returns copies of r0 through High().
func (st *Store) Naturals() (values []*big.Int) {
	for idx := Index(0); idx <= st.high; idx++ {
		values = append(values, st.Get(idx))
	}

	return
}

// Scratch returns an iterator over the materialized scratch registers,
// from r-1 downwards.
func (st *Store) Scratch() iter.Seq2[Index, *big.Int] {
	return func(yield func(Index, *big.Int) bool) {
		keys := slices.Sorted(maps.Keys(st.value))
		slices.Reverse(keys)
		for _, idx := range keys {
			if !idx.Scratch() {
				continue
			}
			if !yield(idx, st.Get(idx)) {
				return
			}
		}
	}
}

// All returns an iterator over r0 through High(), followed by the
// materialized scratch registers.
func (st *Store) All() iter.Seq2[Index, *big.Int] {
	naturals := func(yield func(Index, *big.Int) bool) {
		for idx := Index(0); idx <= st.high; idx++ {
			if !yield(idx, st.Get(idx)) {
				return
			}
		}
	}

	return internal.IterSeq2Concat(naturals, st.Scratch())
}

// Clone returns a deep copy of the register file.
func (st *Store) Clone() (clone *Store) {
	clone = &Store{
		value: make(map[Index]*big.Int, len(st.value)),
		high:  st.high,
	}

	for idx, value := range st.value {
		clone.value[idx] = new(big.Int).Set(value)
	}

	return
}

// String returns the natural registers as a register line,
// ie "registers 1 0 3". Values are not limited to MAX_REGISTER_BITS, so
// the line only assembles again when they fit.
func (st *Store) String() string {
	words := []string{"registers"}
	for _, value := range st.Naturals() {
		words = append(words, value.String())
	}

	return strings.Join(words, " ")
}
