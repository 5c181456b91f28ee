package symbolic

import "fmt"

// Env assigns concrete values to variable names for ground evaluation.
type Env map[string]Value

// Eval interprets a term under a concrete assignment. It is a plain
// interpreter used by simulation and counterexample replay, and performs
// no solving: every variable in the term must be bound by env.
func Eval(t Term, env Env) (Value, error) {
	switch x := t.(type) {
	case Var:
		v, ok := env[x.Name]
		if !ok {
			return nil, fmt.Errorf("symbolic: unbound variable %q", x.Name)
		}
		if x.Of != nil && !SameSort(SortOfValue(v), x.Of) {
			return nil, fmt.Errorf("symbolic: variable %q declared %s but bound to %s",
				x.Name, x.Of, SortOfValue(v))
		}
		return v, nil
	case BoolLit:
		return VBool(x.V), nil
	case IntLit:
		return VInt(x.V), nil
	case StringLit:
		return VString(x.V), nil
	case Not:
		b, err := evalBool(x.X, env)
		if err != nil {
			return nil, err
		}
		return VBool(!b), nil
	case And:
		for _, y := range x.Xs {
			b, err := evalBool(y, env)
			if err != nil {
				return nil, err
			}
			if !b {
				return VBool(false), nil
			}
		}
		return VBool(true), nil
	case Or:
		for _, y := range x.Xs {
			b, err := evalBool(y, env)
			if err != nil {
				return nil, err
			}
			if b {
				return VBool(true), nil
			}
		}
		return VBool(false), nil
	case Implies:
		cond, err := evalBool(x.If, env)
		if err != nil {
			return nil, err
		}
		if !cond {
			return VBool(true), nil
		}
		b, err := evalBool(x.Then, env)
		if err != nil {
			return nil, err
		}
		return VBool(b), nil
	case Ite:
		cond, err := evalBool(x.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond {
			return Eval(x.Then, env)
		}
		return Eval(x.Else, env)
	case Eq:
		a, err := Eval(x.A, env)
		if err != nil {
			return nil, err
		}
		b, err := Eval(x.B, env)
		if err != nil {
			return nil, err
		}
		return VBool(SameValue(a, b)), nil
	case Lt:
		a, b, err := evalInts(x.A, x.B, env)
		if err != nil {
			return nil, err
		}
		return VBool(a < b), nil
	case Le:
		a, b, err := evalInts(x.A, x.B, env)
		if err != nil {
			return nil, err
		}
		return VBool(a <= b), nil
	case Gt:
		a, b, err := evalInts(x.A, x.B, env)
		if err != nil {
			return nil, err
		}
		return VBool(a > b), nil
	case Ge:
		a, b, err := evalInts(x.A, x.B, env)
		if err != nil {
			return nil, err
		}
		return VBool(a >= b), nil
	case Add:
		var sum int64
		for _, y := range x.Xs {
			v, err := evalInt(y, env)
			if err != nil {
				return nil, err
			}
			sum += v
		}
		return VInt(sum), nil
	case Sub:
		a, b, err := evalInts(x.A, x.B, env)
		if err != nil {
			return nil, err
		}
		return VInt(a - b), nil
	case None:
		return VNone{Elem: x.Elem}, nil
	case Some:
		v, err := Eval(x.X, env)
		if err != nil {
			return nil, err
		}
		return VSome{X: v}, nil
	case IsSome:
		v, err := Eval(x.X, env)
		if err != nil {
			return nil, err
		}
		_, ok := v.(VSome)
		if !ok {
			if _, isNone := v.(VNone); !isNone {
				return nil, fmt.Errorf("symbolic: is-some of non-option value %s", v)
			}
		}
		return VBool(ok), nil
	case IsNone:
		v, err := Eval(x.X, env)
		if err != nil {
			return nil, err
		}
		_, ok := v.(VNone)
		if !ok {
			if _, isSome := v.(VSome); !isSome {
				return nil, fmt.Errorf("symbolic: is-none of non-option value %s", v)
			}
		}
		return VBool(ok), nil
	case Unwrap:
		v, err := Eval(x.X, env)
		if err != nil {
			return nil, err
		}
		some, ok := v.(VSome)
		if !ok {
			return nil, fmt.Errorf("symbolic: unwrap of %s", v)
		}
		return some.X, nil
	case Pair:
		fst, err := Eval(x.Fst, env)
		if err != nil {
			return nil, err
		}
		snd, err := Eval(x.Snd, env)
		if err != nil {
			return nil, err
		}
		return VPair{Fst: fst, Snd: snd}, nil
	case First:
		v, err := Eval(x.X, env)
		if err != nil {
			return nil, err
		}
		pair, ok := v.(VPair)
		if !ok {
			return nil, fmt.Errorf("symbolic: first of non-pair value %s", v)
		}
		return pair.Fst, nil
	case Second:
		v, err := Eval(x.X, env)
		if err != nil {
			return nil, err
		}
		pair, ok := v.(VPair)
		if !ok {
			return nil, fmt.Errorf("symbolic: second of non-pair value %s", v)
		}
		return pair.Snd, nil
	default:
		return nil, fmt.Errorf("symbolic: unknown term variant %T", t)
	}
}

// EvalBool evaluates a term expected to be boolean-sorted.
func EvalBool(t Term, env Env) (bool, error) {
	return evalBool(t, env)
}

func evalBool(t Term, env Env) (bool, error) {
	v, err := Eval(t, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(VBool)
	if !ok {
		return false, fmt.Errorf("symbolic: expected bool, got %s", v)
	}
	return bool(b), nil
}

func evalInt(t Term, env Env) (int64, error) {
	v, err := Eval(t, env)
	if err != nil {
		return 0, err
	}
	i, ok := v.(VInt)
	if !ok {
		return 0, fmt.Errorf("symbolic: expected int, got %s", v)
	}
	return int64(i), nil
}

func evalInts(a, b Term, env Env) (int64, int64, error) {
	av, err := evalInt(a, env)
	if err != nil {
		return 0, 0, err
	}
	bv, err := evalInt(b, env)
	if err != nil {
		return 0, 0, err
	}
	return av, bv, nil
}
