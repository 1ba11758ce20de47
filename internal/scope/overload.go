package scope

import (
	"errors"

	"github.com/cwbudde/protolang/internal/entity"
)

// ErrNoMatchingOverload and ErrAmbiguousOverload are the two resolution
// failure modes of spec §4.3; the validator wraps whichever is returned
// into a diag.Diagnostic with call-site context.
var (
	ErrNoMatchingOverload  = errors.New("no matching overload")
	ErrAmbiguousOverload   = errors.New("ambiguous overload")
)

// ResolveOverload implements spec §4.3's single-pass overload resolution:
// a candidate is arity-matched if its parameter count equals len(argTypes);
// among those, it is a loose match (F) if every parameter Accepts the
// corresponding argument type, and additionally a strict match (S subset of
// F) if every parameter Equals the corresponding argument type.
//
//	len(F) == 0          -> ErrNoMatchingOverload
//	len(F) == 1          -> that candidate
//	len(F)  > 1, len(S)==1 -> the strict candidate
//	otherwise            -> ErrAmbiguousOverload
//
// set.All() walks innermost-scope-first, so ties are resolved by nothing
// more than which overload happened to match; true ambiguity reports the
// error rather than picking arbitrarily (original_source Env::overload_resolution).
func ResolveOverload(set *entity.OverloadSet, argTypes []entity.Type) (entity.Callable, error) {
	var loose []entity.Callable
	var strict []entity.Callable

	for _, fn := range set.All() {
		if fn.ParamCount() != len(argTypes) {
			continue
		}
		isLoose := true
		isStrict := true
		for i, arg := range argTypes {
			param := fn.ParamType(i)
			if param == nil || !param.Accepts(arg) {
				isLoose = false
				isStrict = false
				break
			}
			if !param.Equals(arg) {
				isStrict = false
			}
		}
		if isLoose {
			loose = append(loose, fn)
			if isStrict {
				strict = append(strict, fn)
			}
		}
	}

	switch {
	case len(loose) == 0:
		return nil, ErrNoMatchingOverload
	case len(loose) == 1:
		return loose[0], nil
	case len(strict) == 1:
		return strict[0], nil
	default:
		return nil, ErrAmbiguousOverload
	}
}
