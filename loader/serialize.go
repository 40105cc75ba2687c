package loader

import (
	"fmt"

	"github.com/dekarrin/rezi"
	"github.com/dekarrin/taul/grammar"
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/internal/taulerr"
)

// Serialize encodes g as a portable byte sequence: the §6.3 grammar
// serialize(grammar) -> bytes contract. g is re-rendered to a spec binary
// with grammar.Emit, then handed to rezi the same way the teacher's grammar
// cache DAO persists a *game.State (server/dao/sqlite/sqlite.go's
// rezi.EncBinary(g)/rezi.DecBinary(stateData, g) pair) — specbin.Spec
// implements encoding.BinaryMarshaler/BinaryUnmarshaler for exactly this.
func Serialize(g *grammar.Grammar) []byte {
	spec := grammar.Emit(g)
	return rezi.EncBinary(spec)
}

// Deserialize is Serialize's inverse: the §6.3 deserialize(bytes) -> grammar
// contract. It decodes data back into a spec binary with rezi.DecBinary and
// loads it exactly as Load would, re-running Validate and the LL(1) check,
// so the resulting Grammar is behaviourally indistinguishable from the one
// Serialize was given (§8 property 1) even though no field of it was copied
// directly.
func Deserialize(data []byte) Result {
	var spec specbin.Spec
	n, err := rezi.DecBinary(data, &spec)
	if err != nil {
		counter := taulerr.NewCounter()
		counter.Raise(taulerr.InternalError, 0, fmt.Sprintf("rezi decode: %v", err))
		return Result{Counter: counter}
	}
	if n != len(data) {
		counter := taulerr.NewCounter()
		counter.Raise(taulerr.InternalError, 0, fmt.Sprintf("rezi decoded byte count mismatch: consumed %d/%d", n, len(data)))
		return Result{Counter: counter}
	}
	return Load(spec)
}
