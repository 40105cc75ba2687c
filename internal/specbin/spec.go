package specbin

import (
	"encoding/binary"
	"fmt"
)

// Instruction is one decoded spec binary instruction. Only the fields
// relevant to Op are meaningful. The fixed operand shape of each opcode
// is:
//
//   - LPRDecl, PPRDecl, Name: Str
//   - LPR, PPR: Str and Qual
//   - String, Charset: Str (a literal, or a charset range expression)
//   - Pos: Position
//   - all others: no operands
type Instruction struct {
	Op       Opcode
	Str      string
	Qual     Qualifier
	Position uint32
}

func (ins Instruction) String() string {
	switch ins.Op {
	case LPRDecl, PPRDecl, Name, String, Charset:
		return fmt.Sprintf("%s %q", ins.Op, ins.Str)
	case LPR, PPR:
		return fmt.Sprintf("%s %q %s", ins.Op, ins.Str, ins.Qual)
	case Pos:
		return fmt.Sprintf("%s %d", ins.Op, ins.Position)
	default:
		return ins.Op.String()
	}
}

// Spec is an immutable, already-written spec binary buffer.
type Spec struct {
	bin []byte
}

// Bytes returns the raw spec binary bytes. The caller must not modify them.
func (s Spec) Bytes() []byte { return s.bin }

// MarshalBinary implements encoding.BinaryMarshaler, handing back s's raw
// wire bytes unchanged. This is what lets a Spec be passed straight to
// rezi.EncBinary (see loader.Serialize) the same way the teacher's
// *game.State is: rezi only needs a BinaryMarshaler/BinaryUnmarshaler pair,
// not knowledge of the spec binary's instruction layout.
func (s Spec) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), s.bin...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Spec) UnmarshalBinary(data []byte) error {
	s.bin = append([]byte(nil), data...)
	return nil
}

// Writer builds a Spec instruction by instruction. The zero value is ready
// to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a new, empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) writeOp(op Opcode) {
	w.buf = append(w.buf, byte(op))
}

func (w *Writer) writeStr(s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	w.buf = append(w.buf, lenBuf[:]...)
	w.buf = append(w.buf, s...)
}

func (w *Writer) writeU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Pos records a source position for use in diagnostics. Soft hint only; the
// loader never depends on the precise count or spacing of pos instructions.
func (w *Writer) Pos(pos uint32) *Writer {
	w.writeOp(Pos)
	w.writeU32(pos)
	return w
}

// Close closes the innermost open composite expression scope, or the
// innermost open lpr/ppr rule scope if none is open.
func (w *Writer) Close() *Writer {
	w.writeOp(Close)
	return w
}

// Alternative starts a new sibling alternative within the current composite
// expression scope.
func (w *Writer) Alternative() *Writer {
	w.writeOp(Alternative)
	return w
}

// LPRDecl declares (but does not define) an LPR named name.
func (w *Writer) LPRDecl(name string) *Writer {
	w.writeOp(LPRDecl)
	w.writeStr(name)
	return w
}

// PPRDecl declares (but does not define) a PPR named name.
func (w *Writer) PPRDecl(name string) *Writer {
	w.writeOp(PPRDecl)
	w.writeStr(name)
	return w
}

// LPR opens the definition scope of the LPR named name, with qualifier q.
func (w *Writer) LPR(name string, q Qualifier) *Writer {
	w.writeOp(LPR)
	w.writeStr(name)
	w.buf = append(w.buf, byte(q))
	return w
}

// PPR opens the definition scope of the PPR named name, with qualifier q.
func (w *Writer) PPR(name string, q Qualifier) *Writer {
	w.writeOp(PPR)
	w.writeStr(name)
	w.buf = append(w.buf, byte(q))
	return w
}

// End matches the end-of-input sentinel.
func (w *Writer) End() *Writer {
	w.writeOp(End)
	return w
}

// Any matches any single terminal.
func (w *Writer) Any() *Writer {
	w.writeOp(Any)
	return w
}

// String matches the literal s (a string of characters in LPR context, or
// the single token whose spelling equals s in PPR context).
func (w *Writer) String(s string) *Writer {
	w.writeOp(String)
	w.writeStr(s)
	return w
}

// Charset matches a single glyph within the character class described by
// expr, a range expression such as "a-zA-Z0-9_". Valid only in LPR context.
func (w *Writer) Charset(expr string) *Writer {
	w.writeOp(Charset)
	w.writeStr(expr)
	return w
}

// Token matches any single token. Valid only in PPR context.
func (w *Writer) Token() *Writer {
	w.writeOp(Token)
	return w
}

// Failure matches a failure token. Valid only in PPR context.
func (w *Writer) Failure() *Writer {
	w.writeOp(Failure)
	return w
}

// Name references another rule by name.
func (w *Writer) Name(name string) *Writer {
	w.writeOp(Name)
	w.writeStr(name)
	return w
}

// Sequence opens a composite sequence-of-subexpressions scope.
func (w *Writer) Sequence() *Writer {
	w.writeOp(Sequence)
	return w
}

// Lookahead opens a single-terminal-scope lookahead assertion.
func (w *Writer) Lookahead() *Writer {
	w.writeOp(Lookahead)
	return w
}

// LookaheadNot opens a single-terminal-scope negative lookahead assertion.
func (w *Writer) LookaheadNot() *Writer {
	w.writeOp(LookaheadNot)
	return w
}

// Not opens a single-terminal-scope negated-match assertion.
func (w *Writer) Not() *Writer {
	w.writeOp(Not)
	return w
}

// Optional opens a composite zero-or-one scope.
func (w *Writer) Optional() *Writer {
	w.writeOp(Optional)
	return w
}

// KleeneStar opens a composite zero-or-more scope.
func (w *Writer) KleeneStar() *Writer {
	w.writeOp(KleeneStar)
	return w
}

// KleenePlus opens a composite one-or-more scope.
func (w *Writer) KleenePlus() *Writer {
	w.writeOp(KleenePlus)
	return w
}

// Done finalizes the Writer into an immutable Spec. The Writer remains
// usable afterwards, starting from a fresh empty buffer.
func (w *Writer) Done() Spec {
	result := Spec{bin: w.buf}
	w.buf = nil
	return result
}

// Read decodes one instruction starting at byte offset offset in s, and
// returns it along with the offset immediately following it. It returns an
// error rather than panicking if the buffer is truncated or the opcode byte
// is not one of the known Opcode values.
func Read(s Spec, offset int) (Instruction, int, error) {
	buf := s.bin
	if offset < 0 || offset >= len(buf) {
		return Instruction{}, offset, fmt.Errorf("specbin: read offset %d out of range (len %d)", offset, len(buf))
	}
	op := Opcode(buf[offset])
	if !op.valid() {
		return Instruction{}, offset, fmt.Errorf("specbin: unrecognized opcode byte %d at offset %d", buf[offset], offset)
	}
	next := offset + 1
	ins := Instruction{Op: op}

	readStr := func() (string, error) {
		if next+4 > len(buf) {
			return "", fmt.Errorf("specbin: truncated string length at offset %d", next)
		}
		n := int(binary.LittleEndian.Uint32(buf[next : next+4]))
		next += 4
		if n < 0 || next+n > len(buf) {
			return "", fmt.Errorf("specbin: truncated string body at offset %d (want %d bytes)", next, n)
		}
		s := string(buf[next : next+n])
		next += n
		return s, nil
	}

	switch op {
	case Pos:
		if next+4 > len(buf) {
			return Instruction{}, offset, fmt.Errorf("specbin: truncated pos operand at offset %d", next)
		}
		ins.Position = binary.LittleEndian.Uint32(buf[next : next+4])
		next += 4
	case LPRDecl, PPRDecl, Name, String, Charset:
		s, err := readStr()
		if err != nil {
			return Instruction{}, offset, err
		}
		ins.Str = s
	case LPR, PPR:
		s, err := readStr()
		if err != nil {
			return Instruction{}, offset, err
		}
		ins.Str = s
		if next+1 > len(buf) {
			return Instruction{}, offset, fmt.Errorf("specbin: truncated qualifier operand at offset %d", next)
		}
		ins.Qual = Qualifier(buf[next])
		next++
	default:
		// Close, Alternative, End, Any, Token, Failure, Sequence, Lookahead,
		// LookaheadNot, Not, Optional, KleeneStar, KleenePlus: no operands.
	}

	return ins, next, nil
}

// Visitor is called once per instruction by Step, along with the opcode of
// the next instruction (lookahead), or ok=false at end of spec.
type Visitor func(ins Instruction, nextOp Opcode, ok bool) error

// Step walks s front-to-back, invoking visit once per instruction and
// providing the lookahead opcode (the next opcode, or ok=false at end).
func Step(s Spec, visit Visitor) error {
	offset := 0
	for offset < len(s.bin) {
		ins, next, err := Read(s, offset)
		if err != nil {
			return err
		}
		var lookaheadOp Opcode
		var ok bool
		if next < len(s.bin) {
			lookaheadOp = Opcode(s.bin[next])
			if !lookaheadOp.valid() {
				return fmt.Errorf("specbin: unrecognized opcode byte %d at offset %d", s.bin[next], next)
			}
			ok = true
		}
		if err := visit(ins, lookaheadOp, ok); err != nil {
			return err
		}
		offset = next
	}
	return nil
}
