package grammar

import "github.com/dekarrin/taul/internal/specbin"

// Emit re-renders g as a spec binary, the reverse of loader's two-pass
// construction. It is the write half of the §6.3 serialization contract:
// loader.Serialize calls Emit and hands the result to rezi, loader.Load
// (via loader.Deserialize) is the corresponding read half. g need not be
// validated; Emit only walks the rules and expression trees it was given,
// not derived FIRST/FOLLOW/parse-table data, since Validate recomputes all
// of that when the emitted binary is loaded back in.
//
// Declarations are emitted in declaration order, so the reloaded grammar's
// StartSymbol (the first PPR declared) matches g's.
func Emit(g *Grammar) specbin.Spec {
	w := specbin.NewWriter()

	for _, r := range g.lprs {
		w.LPRDecl(r.Name)
	}
	for _, r := range g.pprs {
		w.PPRDecl(r.Name)
	}
	for _, r := range g.lprs {
		w.LPR(r.Name, r.Qualifier)
		emitBuilt(w, r.Expr)
		w.Close()
	}
	for _, r := range g.pprs {
		w.PPR(r.Name, r.Qualifier)
		emitBuilt(w, r.Expr)
		w.Close()
	}

	return w.Done()
}

// emitBuilt emits e as the content of an already-open rule or Sequence
// scope, splitting on Alternative when e is itself an alternation. e is
// always in "scope.build() result" shape (see loader.go's scope.build):
// either a single node, a Sequence of one alternative's children, or an
// Alternation of such nodes.
func emitBuilt(w *specbin.Writer, e Expr) {
	if e.Kind == ExprAlternation {
		for i, c := range e.Children {
			if i > 0 {
				w.Alternative()
			}
			emitAlt(w, c)
		}
		return
	}
	emitAlt(w, e)
}

// emitAlt emits e as one alternative's worth of content: a run of sibling
// leaves if e is a Sequence, or a single leaf otherwise.
func emitAlt(w *specbin.Writer, e Expr) {
	if e.Kind == ExprSequence {
		for _, c := range e.Children {
			emitChild(w, c)
		}
		return
	}
	emitChild(w, e)
}

// emitChild emits one child expression: a terminal/reference leaf
// directly, a single-child composite kind by opening its scope opcode and
// emitting its one child through emitChild, or a bare
// Sequence/Alternation by reopening an explicit Sequence scope around it,
// since that is the only opcode-scope through which a loader can
// reconstruct either shape as a single nested child.
func emitChild(w *specbin.Writer, e Expr) {
	switch e.Kind {
	case ExprEnd:
		w.End()
	case ExprAny:
		w.Any()
	case ExprString:
		w.String(e.Str)
	case ExprCharset:
		w.Charset(e.Str)
	case ExprToken:
		w.Token()
	case ExprFailure:
		w.Failure()
	case ExprRef:
		w.Name(e.Str)
	case ExprOptional:
		w.Optional()
		emitChild(w, e.Children[0])
		w.Close()
	case ExprKleeneStar:
		w.KleeneStar()
		emitChild(w, e.Children[0])
		w.Close()
	case ExprKleenePlus:
		w.KleenePlus()
		emitChild(w, e.Children[0])
		w.Close()
	case ExprLookahead:
		w.Lookahead()
		emitChild(w, e.Children[0])
		w.Close()
	case ExprLookaheadNot:
		w.LookaheadNot()
		emitChild(w, e.Children[0])
		w.Close()
	case ExprNot:
		w.Not()
		emitChild(w, e.Children[0])
		w.Close()
	case ExprSequence, ExprAlternation:
		w.Sequence()
		emitBuilt(w, e)
		w.Close()
	}
}
