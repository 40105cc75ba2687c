// Package specbin implements the spec binary: the compact, endian-normalized
// instruction sequence that a grammar loader consumes. It is an ordered,
// self-describing byte sequence of opcodes with inline operands, written
// little-endian on disk so it is portable across hosts.
//
// Changing the opcode set is a breaking change; see Opcode for the exact
// list this package supports.
package specbin

import "fmt"

// Opcode identifies one spec binary instruction. The set is closed and
// exhaustive: these are exactly the instructions a spec binary may contain.
type Opcode byte

const (
	Pos Opcode = iota
	Close
	Alternative
	LPRDecl
	PPRDecl
	LPR
	PPR
	End
	Any
	String
	Charset
	Token
	Failure
	Name
	Sequence
	Lookahead
	LookaheadNot
	Not
	Optional
	KleeneStar
	KleenePlus

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	Pos:          "pos",
	Close:        "close",
	Alternative:  "alternative",
	LPRDecl:      "lpr_decl",
	PPRDecl:      "ppr_decl",
	LPR:          "lpr",
	PPR:          "ppr",
	End:          "end",
	Any:          "any",
	String:       "string",
	Charset:      "charset",
	Token:        "token",
	Failure:      "failure",
	Name:         "name",
	Sequence:     "sequence",
	Lookahead:    "lookahead",
	LookaheadNot: "lookahead_not",
	Not:          "not",
	Optional:     "optional",
	KleeneStar:   "kleene_star",
	KleenePlus:   "kleene_plus",
}

func (op Opcode) String() string {
	if op >= numOpcodes {
		return fmt.Sprintf("opcode(%d)", byte(op))
	}
	return opcodeNames[op]
}

func (op Opcode) valid() bool {
	return op < numOpcodes
}

// Qualifier is the rule-level qualifier carried by lpr/ppr instructions.
type Qualifier byte

const (
	QualifierNone Qualifier = iota
	QualifierSkip
	QualifierSupport
)

func (q Qualifier) String() string {
	switch q {
	case QualifierNone:
		return "none"
	case QualifierSkip:
		return "skip"
	case QualifierSupport:
		return "support"
	default:
		return fmt.Sprintf("qualifier(%d)", byte(q))
	}
}
