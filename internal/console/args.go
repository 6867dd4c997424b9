package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// fields splits a line on whitespace. Double quotes group a token that
// contains spaces.
func fields(line string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				out = append(out, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote", core.ErrInvalidOperation)
	}
	if pending {
		out = append(out, cur.String())
	}
	return out, nil
}

// clauses pulls trailing "keyword value..." groups out of args. arity maps
// each keyword to the number of values it takes.
func clauses(args []string, arity map[string]int) ([]string, map[string][]string, error) {
	rest := make([]string, 0, len(args))
	found := make(map[string][]string)
	for i := 0; i < len(args); i++ {
		n, ok := arity[strings.ToLower(args[i])]
		if !ok {
			rest = append(rest, args[i])
			continue
		}
		kw := strings.ToLower(args[i])
		if i+n >= len(args) {
			return nil, nil, fmt.Errorf("%w: %q needs %d value(s)", core.ErrInvalidOperation, kw, n)
		}
		found[kw] = args[i+1 : i+1+n]
		i += n
	}
	return rest, found, nil
}

func floats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", core.ErrInvalidOperation, a)
		}
		out[i] = f
	}
	return out, nil
}

// vectors parses groups of three numbers.
func vectors(args []string, want int) ([]geom.Vec3, error) {
	if len(args) != want*3 {
		return nil, fmt.Errorf("%w: expected %d numbers, got %d", core.ErrInvalidOperation, want*3, len(args))
	}
	nums, err := floats(args)
	if err != nil {
		return nil, err
	}
	out := make([]geom.Vec3, want)
	for i := range want {
		out[i] = vec(nums[i*3 : i*3+3])
	}
	return out, nil
}

func exactly(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("%w: usage: %s", core.ErrInvalidOperation, usage)
	}
	return nil
}
