package vm

import (
	"fmt"
	"strings"

	bferrors "github.com/deepnoodle-ai/bfjit/errors"
)

var backendNames = []string{"auto", "jit", "interp"}

// Backend selects how an Engine executes its program.
type Backend int

const (
	// BackendAuto uses native code where supported and the interpreter
	// elsewhere.
	BackendAuto Backend = iota

	// BackendJIT always uses generated native code.
	BackendJIT

	// BackendInterpreter always uses the interpreter.
	BackendInterpreter
)

func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendJIT:
		return "jit"
	case BackendInterpreter:
		return "interp"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// ParseBackend parses a backend name as accepted on the command line.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return BackendAuto, nil
	case "jit", "native":
		return BackendJIT, nil
	case "interp", "interpreter":
		return BackendInterpreter, nil
	default:
		err := fmt.Errorf("unknown backend %q (expected auto, jit or interp)", name)
		if hint := bferrors.FormatSuggestions(bferrors.SuggestSimilar(name, backendNames)); hint != "" {
			err = fmt.Errorf("%w; %s", err, hint)
		}
		return BackendAuto, err
	}
}
