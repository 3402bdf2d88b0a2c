// SPDX-License-Identifier: MIT
// File: value.go
// Role: Tagged-union parameter value and the closed parameter-code enumeration.

package stageflow

import (
	"fmt"
	"strings"
	"time"
)

// Kind tags the payload of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDuration
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDuration:
		return "duration"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value holds exactly one parameter payload.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	d    time.Duration
	s    string
}

// Int wraps an integer.
func Int(v int) Value { return Value{kind: KindInt, i: int64(v)} }

// Float wraps a float.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Bool wraps a boolean.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Duration wraps a duration.
func Duration(v time.Duration) Value { return Value{kind: KindDuration, d: v} }

// String wraps a string.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Kind returns the payload tag.
func (v Value) Kind() Kind { return v.kind }

func (v Value) wrong(want Kind) error {
	return fmt.Errorf("%w: want %s, have %s", ErrWrongKind, want, v.kind)
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int, error) {
	if v.kind != KindInt {
		return 0, v.wrong(KindInt)
	}

	return int(v.i), nil
}

// AsFloat returns the float payload; integers widen.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	default:
		return 0, v.wrong(KindFloat)
	}
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, v.wrong(KindBool)
	}

	return v.b, nil
}

// AsDuration returns the duration payload; strings are parsed with time.ParseDuration.
func (v Value) AsDuration() (time.Duration, error) {
	switch v.kind {
	case KindDuration:
		return v.d, nil
	case KindString:
		d, err := time.ParseDuration(v.s)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrWrongKind, err)
		}
		return d, nil
	default:
		return 0, v.wrong(KindDuration)
	}
}

// AsString returns the string payload.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.wrong(KindString)
	}

	return v.s, nil
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprint(v.i)
	case KindFloat:
		return fmt.Sprint(v.f)
	case KindBool:
		return fmt.Sprint(v.b)
	case KindDuration:
		return v.d.String()
	case KindString:
		return fmt.Sprintf("%q", v.s)
	default:
		return "<invalid>"
	}
}

// accepts reports whether v can be read as kind k.
func (v Value) accepts(k Kind) bool {
	switch k {
	case KindFloat:
		return v.kind == KindFloat || v.kind == KindInt
	case KindDuration:
		_, err := v.AsDuration()
		return err == nil
	default:
		return v.kind == k
	}
}

// ParameterCode is the closed set of algorithm parameters.
type ParameterCode int

const (
	MaxIterations ParameterCode = iota + 1
	CanDoImprovements
	ImprovementThreshold
	LKMaxSteps
	HybridMaxRestarts
	HybridTimeWalkThreshold
	TabuTenureFactor
	TabuMaxDeadlockIterations
)

type parameterInfo struct {
	name string
	kind Kind
}

var parameterInfos = map[ParameterCode]parameterInfo{
	MaxIterations:             {"max_iterations", KindInt},
	CanDoImprovements:         {"can_do_improvements", KindBool},
	ImprovementThreshold:      {"improvement_threshold", KindInt},
	LKMaxSteps:                {"lk_max_steps", KindInt},
	HybridMaxRestarts:         {"hybrid_max_restarts", KindInt},
	HybridTimeWalkThreshold:   {"hybrid_time_walk_threshold", KindDuration},
	TabuTenureFactor:          {"tabu_tenure_factor", KindInt},
	TabuMaxDeadlockIterations: {"tabu_max_deadlock_iterations", KindInt},
}

func (c ParameterCode) String() string {
	if info, ok := parameterInfos[c]; ok {
		return info.name
	}

	return fmt.Sprintf("ParameterCode(%d)", int(c))
}

// Kind returns the value kind the parameter expects.
func (c ParameterCode) Kind() Kind { return parameterInfos[c].kind }

// ParseParameterCode maps a configuration key to a ParameterCode.
func ParseParameterCode(s string) (ParameterCode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for c, info := range parameterInfos {
		if info.name == norm {
			return c, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, s)
}
