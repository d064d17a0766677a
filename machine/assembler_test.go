package machine

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"registers 1 2 3",
		"inc r4",
		"some_label: decjz r0 HALT",
		"decjz r-1 some_label",
	}

	asm := &Assembler{}
	records, initial, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Record{
		{2, "inc r4", "", "inc", []string{"r4"}},
		{3, "some_label: decjz r0 HALT", "some_label", "decjz", []string{"r0", "HALT"}},
		{4, "decjz r-1 some_label", "", "decjz", []string{"r-1", "some_label"}},
	}
	assert.Equal(expected, records)
	if assert.Equal(3, len(initial)) {
		for n, value := range initial {
			assert.Equal(int64(n+1), value.Int64())
		}
	}
}

func TestAssemblerBlankAndComments(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"",
		"# leading comment",
		"registers 3",
		"",
		"   ",
		"\t\t\t",
		"beginning: decjz r0 even_halt",
		"    # indented comment",
		"decjz r0 odd_halt",
		"decjz r-1 beginning",
		"",
		"even_halt: decjz r-1 HALT",
		"",
		"odd_halt: inc r0",
		"decjz r-1 HALT",
		"",
	}

	prog, regs, err := AssembleString(strings.Join(program, "\n"))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(6, len(prog.Lines))
	assert.Equal(7, prog.Lines[0].LineNo)

	state := prog.Run(prog.Start(regs))
	assert.True(state.Halted)
	assert.Equal("registers 1", state.Registers.String())
}

func TestAssemblerOptionalRegisters(t *testing.T) {
	assert := assert.New(t)

	prog, regs, err := AssembleString("inc r0\ninc r0\n")
	assert.NoError(err)

	state := prog.Run(prog.Start(regs))
	assert.Equal("registers 2", state.Registers.String())
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"registers $(1 << 10) $(3 * 3) 7",
		"inc r$(1 + 1)",
	}

	prog, regs, err := AssembleString(strings.Join(program, "\n"))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal("registers 1024 9 7", regs.String())
	assert.Equal(MakeInc(2), prog.Lines[0].Instruction)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"late registers", []string{"inc r0", "registers 1"}, 2, ErrRegistersMisplaced},
		{"second registers", []string{"registers 1", "registers 2", "inc r0"}, 2, ErrRegistersMisplaced},
		{"negative value", []string{"registers -1", "inc r0"}, 1, ErrParseNumber("-1")},
		{"not a value", []string{"registers one", "inc r0"}, 1, ErrParseNumber("one")},
		{"huge value", []string{"registers " + new(big.Int).Lsh(big.NewInt(1), 128).String(), "inc r0"}, 1, ErrRegisterValueTooLarge},
		{"huge expression", []string{"registers $(1 << 128)", "inc r0"}, 1, ErrRegisterValueTooLarge},
		{"bad expression", []string{"registers $(1 +)", "inc r0"}, 1, ErrParseExpression("1 +")},
		{"string expression", []string{"registers $('a')", "inc r0"}, 1, ErrParseExpression("'a'")},
		{"label only", []string{"loop:", "inc r0"}, 1, ErrOpcodeMissing},
		{"empty label", []string{": inc r0"}, 1, ErrLabelInvalid},
		{"spaced label", []string{"my loop: inc r0"}, 1, ErrLabelInvalid},
		{"bad register", []string{"inc r0", "inc rx"}, 2, ErrMalformedRegister},
		{"missing label", []string{"inc r0", "", "decjz r0 nosuch"}, 3, ErrLabelMissing("nosuch")},
	}

	for _, entry := range table {
		_, _, err := AssembleString(strings.Join(entry.program, "\n"))
		assert.ErrorIs(err, entry.err, entry.name)

		var syn *ErrSyntax
		if assert.True(errors.As(err, &syn), entry.name) {
			assert.Equal(entry.lineno, syn.LineNo, entry.name)
		}
	}
}

func TestParseValue(t *testing.T) {
	assert := assert.New(t)

	limit := new(big.Int).Lsh(big.NewInt(1), MAX_REGISTER_BITS)

	table := [](struct {
		word    string
		natural error
		value   error
	}){
		{"0", nil, nil},
		{"42", nil, nil},
		{new(big.Int).Sub(limit, big.NewInt(1)).String(), nil, nil},
		{limit.String(), nil, ErrRegisterValueTooLarge},
		{"", ErrParseNumber(""), ErrParseNumber("")},
		{"+1", ErrParseNumber("+1"), ErrParseNumber("+1")},
		{"-1", ErrParseNumber("-1"), ErrParseNumber("-1")},
		{"1e3", ErrParseNumber("1e3"), ErrParseNumber("1e3")},
	}

	for _, entry := range table {
		natural, err := ParseNatural(entry.word)
		if entry.natural == nil {
			assert.NoError(err, entry.word)
			assert.Equal(entry.word, natural.String())
		} else {
			assert.ErrorIs(err, entry.natural, entry.word)
			assert.Nil(natural, entry.word)
		}

		value, err := ParseValue(entry.word)
		if entry.value == nil {
			assert.NoError(err, entry.word)
			assert.Equal(entry.word, value.String())
		} else {
			assert.ErrorIs(err, entry.value, entry.word)
			assert.Nil(value, entry.word)
		}
	}
}

func TestAssemblerEmpty(t *testing.T) {
	assert := assert.New(t)

	for _, program := range []string{"", "registers 1 2 3", "# nothing\n\n"} {
		prog, regs, err := AssembleString(program)
		assert.ErrorIs(err, ErrEmptyProgram)
		assert.Nil(prog)
		assert.Nil(regs)
	}
}

func TestLineFormat(t *testing.T) {
	assert := assert.New(t)

	prog, _, err := AssembleString("start: decjz r0 halt\nmany r1 r-2\ndecjz r-1 start")
	assert.NoError(err)

	assert.Equal("start: decjz r0 HALT", prog.Lines[0].Format())
	assert.Equal("many r1 r-2", prog.Lines[1].Format())
	assert.Equal("decjz r-1 start", prog.Lines[2].Format())
}
