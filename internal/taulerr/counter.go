package taulerr

import "fmt"

// Code is a load-time diagnostic, raised by the grammar loader and counted
// rather than fatal (per spec, errors do not abort loading; the loader
// counts and reports them and returns no grammar when the count is
// nonzero). Grounded on the original source's error_counter<Error>, which
// expects a closed enum of named error kinds.
type Code int

const (
	InternalError Code = iota
	SourceCodeNotFound
	SyntaxError
	IllegalMultipleQualifiers
	ScopeNotClosed
	StrayClose
	RuleNameConflict
	RuleNeverDefined
	RuleNeverDeclared
	RuleAlreadyDefined
	RuleNotFound
	RuleMayNotBePPR
	IllegalRuleDeclare
	IllegalInLPRScope
	IllegalInPPRScope
	IllegalInNoScope
	IllegalQualifier
	IllegalInSingleTerminalScope
	IllegalInNoAlternationScope
	IllegalInSingleSubexprScope
	IllegalInNoEndSubexprScope
	IllegalAmbiguity

	numCodes
)

var codeNames = [numCodes]string{
	InternalError:                "internal-error",
	SourceCodeNotFound:           "source-code-not-found",
	SyntaxError:                  "syntax-error",
	IllegalMultipleQualifiers:    "illegal-multiple-qualifiers",
	ScopeNotClosed:               "scope-not-closed",
	StrayClose:                   "stray-close",
	RuleNameConflict:             "rule-name-conflict",
	RuleNeverDefined:             "rule-never-defined",
	RuleNeverDeclared:            "rule-never-declared",
	RuleAlreadyDefined:           "rule-already-defined",
	RuleNotFound:                 "rule-not-found",
	RuleMayNotBePPR:              "rule-may-not-be-ppr",
	IllegalRuleDeclare:           "illegal-rule-declare",
	IllegalInLPRScope:            "illegal-in-lpr-scope",
	IllegalInPPRScope:            "illegal-in-ppr-scope",
	IllegalInNoScope:             "illegal-in-no-scope",
	IllegalQualifier:             "illegal-qualifier",
	IllegalInSingleTerminalScope: "illegal-in-single-terminal-scope",
	IllegalInNoAlternationScope:  "illegal-in-no-alternation-scope",
	IllegalInSingleSubexprScope:  "illegal-in-single-subexpr-scope",
	IllegalInNoEndSubexprScope:   "illegal-in-no-end-subexpr-scope",
	IllegalAmbiguity:             "illegal-ambiguity",
}

func (c Code) String() string {
	if c < 0 || c >= numCodes {
		return fmt.Sprintf("code(%d)", int(c))
	}
	return codeNames[c]
}

// Diagnostic is a single named load-time error, with the source position (if
// known, from the most recently seen pos instruction) and a human-readable
// detail message.
type Diagnostic struct {
	Code     Code
	Position int
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s@%d: %s", d.Code, d.Position, d.Message)
}

// Counter accumulates Diagnostics raised during grammar loading, tallied by
// Code, mirroring the original source's error_counter<Error>.
type Counter struct {
	counts [numCodes]int
	total  int
	diags  []Diagnostic
}

// NewCounter returns an empty, ready-to-use Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Raise records one occurrence of code at the given position with the given
// detail message.
func (c *Counter) Raise(code Code, position int, message string) {
	c.counts[code]++
	c.total++
	c.diags = append(c.diags, Diagnostic{Code: code, Position: position, Message: message})
}

// Count returns how many times code has been raised.
func (c *Counter) Count(code Code) int {
	return c.counts[code]
}

// Total returns the total number of diagnostics raised across all codes.
func (c *Counter) Total() int {
	return c.total
}

// HasErrors reports whether any diagnostic has been raised.
func (c *Counter) HasErrors() bool {
	return c.total > 0
}

// Diagnostics returns all raised diagnostics in the order they were raised.
// The returned slice must not be modified by the caller.
func (c *Counter) Diagnostics() []Diagnostic {
	return c.diags
}

// Reset clears all counts and recorded diagnostics.
func (c *Counter) Reset() {
	c.counts = [numCodes]int{}
	c.total = 0
	c.diags = nil
}
