package specbin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Writer_Read_RoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		build  func(w *Writer)
		expect []Instruction
	}{
		{
			name: "empty",
			build: func(w *Writer) {
			},
			expect: nil,
		},
		{
			name: "pos",
			build: func(w *Writer) {
				w.Pos(42)
			},
			expect: []Instruction{{Op: Pos, Position: 42}},
		},
		{
			name: "no-operand opcodes",
			build: func(w *Writer) {
				w.Close().Alternative().End().Any().Token().Failure().Sequence()
				w.Lookahead().LookaheadNot().Not().Optional().KleeneStar().KleenePlus()
			},
			expect: []Instruction{
				{Op: Close}, {Op: Alternative}, {Op: End}, {Op: Any}, {Op: Token},
				{Op: Failure}, {Op: Sequence}, {Op: Lookahead}, {Op: LookaheadNot},
				{Op: Not}, {Op: Optional}, {Op: KleeneStar}, {Op: KleenePlus},
			},
		},
		{
			name: "decls and name",
			build: func(w *Writer) {
				w.LPRDecl("WS").PPRDecl("expr").Name("expr")
			},
			expect: []Instruction{
				{Op: LPRDecl, Str: "WS"},
				{Op: PPRDecl, Str: "expr"},
				{Op: Name, Str: "expr"},
			},
		},
		{
			name: "lpr and ppr with qualifiers",
			build: func(w *Writer) {
				w.LPR("WS", QualifierSkip).PPR("expr", QualifierNone)
			},
			expect: []Instruction{
				{Op: LPR, Str: "WS", Qual: QualifierSkip},
				{Op: PPR, Str: "expr", Qual: QualifierNone},
			},
		},
		{
			name: "string and charset literals",
			build: func(w *Writer) {
				w.String("hello").Charset("a-zA-Z0-9_")
			},
			expect: []Instruction{
				{Op: String, Str: "hello"},
				{Op: Charset, Str: "a-zA-Z0-9_"},
			},
		},
		{
			name: "empty string operand",
			build: func(w *Writer) {
				w.String("")
			},
			expect: []Instruction{{Op: String, Str: ""}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			w := NewWriter()
			tc.build(w)
			s := w.Done()

			var got []Instruction
			offset := 0
			for offset < len(s.Bytes()) {
				ins, next, err := Read(s, offset)
				require.NoError(err)
				require.Greater(next, offset)
				got = append(got, ins)
				offset = next
			}

			assert.Equal(tc.expect, got)
		})
	}
}

func Test_Read_FailsOnMalformedBuffer(t *testing.T) {
	testCases := []struct {
		name string
		bin  []byte
	}{
		{
			name: "unrecognized opcode byte",
			bin:  []byte{255},
		},
		{
			name: "truncated pos operand",
			bin:  []byte{byte(Pos), 0x01, 0x02},
		},
		{
			name: "truncated string length",
			bin:  []byte{byte(Name), 0x01, 0x02},
		},
		{
			name: "truncated string body",
			bin:  []byte{byte(Name), 0x05, 0x00, 0x00, 0x00, 'h', 'i'},
		},
		{
			name: "truncated qualifier",
			bin:  append([]byte{byte(LPR), 0x02, 0x00, 0x00, 0x00}, "WS"...),
		},
		{
			name: "empty buffer read at offset 0",
			bin:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			s := Spec{bin: tc.bin}
			_, _, err := Read(s, 0)
			assert.Error(err)
		})
	}
}

func Test_Step_VisitsInOrderWithLookahead(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := NewWriter()
	w.LPRDecl("WS").LPR("WS", QualifierSkip).Charset(" \t").Close()
	s := w.Done()

	var visited []Opcode
	var lookaheads []Opcode
	var oks []bool

	err := Step(s, func(ins Instruction, nextOp Opcode, ok bool) error {
		visited = append(visited, ins.Op)
		lookaheads = append(lookaheads, nextOp)
		oks = append(oks, ok)
		return nil
	})
	require.NoError(err)

	assert.Equal([]Opcode{LPRDecl, LPR, Charset, Close}, visited)
	assert.Equal([]bool{true, true, true, false}, oks)
	assert.Equal(LPR, lookaheads[0])
	assert.Equal(Charset, lookaheads[1])
	assert.Equal(Close, lookaheads[2])
}

func Test_Step_PropagatesVisitorError(t *testing.T) {
	assert := assert.New(t)

	w := NewWriter()
	w.Close().Close()
	s := w.Done()

	sentinel := assert.AnError
	count := 0
	err := Step(s, func(ins Instruction, nextOp Opcode, ok bool) error {
		count++
		return sentinel
	})

	assert.Same(sentinel, err)
	assert.Equal(1, count)
}

func Test_Opcode_String(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("lpr_decl", LPRDecl.String())
	assert.Contains(Opcode(255).String(), "255")
}

func Test_Qualifier_String(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("skip", QualifierSkip.String())
	assert.Equal("support", QualifierSupport.String())
	assert.Equal("none", QualifierNone.String())
}
