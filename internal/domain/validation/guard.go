package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"time"
)

// RuleKind names a single validation rule evaluated by Guard.
type RuleKind string

const (
	RuleNullOrUndefined       RuleKind = "nullOrUndefined"
	RuleEmptyString           RuleKind = "emptyString"
	RuleEmptyArray            RuleKind = "emptyArray"
	RuleIsOneOf               RuleKind = "isOneOf"
	RuleZeroOrPositive        RuleKind = "zeroOrPositive"
	RulePositiveInteger       RuleKind = "positiveInteger"
	RuleZeroOrPositiveInteger RuleKind = "zeroOrPositiveInteger"
	RuleInRange               RuleKind = "inRange"
	RuleMatchesRegex          RuleKind = "matchesRegex"
	RuleValidDate             RuleKind = "validDate"
	RuleIsBefore              RuleKind = "isBefore"
	RuleIsSameOrBefore        RuleKind = "isSameOrBefore"
	RuleIsBoolean             RuleKind = "isBoolean"
	RuleMinLength             RuleKind = "minLength"
	RuleMaxLength             RuleKind = "maxLength"
	RuleAtLeastOne            RuleKind = "atLeastOne"
	RuleConditionalMandatory  RuleKind = "conditionalMandatory"
)

// Argument describes one named value and the rules to evaluate against it.
// Values carries the rule parameters: the allowed set for RuleIsOneOf, the
// min/max bounds for RuleInRange, the pattern for RuleMatchesRegex, the
// reference date for the date comparisons, the length bound for
// RuleMinLength/RuleMaxLength, and the key set for RuleAtLeastOne and
// RuleConditionalMandatory.
type Argument struct {
	Value  any
	Name   string
	Rules  []RuleKind
	Values []any
}

// Guard evaluates every requested rule against the argument and combines the
// outcomes into one Result.
//
// Absence policy: when the value is nil and RuleNullOrUndefined was
// requested, evaluation short-circuits with that single missingValue
// failure. When the value is nil but neither RuleNullOrUndefined nor
// RuleEmptyString was requested, the argument is treated as optional and the
// call succeeds without evaluating the remaining rules.
func Guard(arg Argument) Result {
	if isNil(arg.Value) {
		if hasRule(arg.Rules, RuleNullOrUndefined) {
			return missing(arg.Name)
		}
		if !hasRule(arg.Rules, RuleEmptyString) {
			return Success()
		}
	}

	results := make([]Result, 0, len(arg.Rules))
	for _, kind := range arg.Rules {
		if kind == RuleNullOrUndefined {
			continue
		}
		results = append(results, evaluate(arg, kind))
	}
	return Combine(results...)
}

// GuardBulk maps Guard over a list of argument descriptors. It is used to
// validate every field of one command in a single call; the caller combines
// the returned results so all bad fields are reported together.
func GuardBulk(args []Argument) []Result {
	results := make([]Result, 0, len(args))
	for _, arg := range args {
		results = append(results, Guard(arg))
	}
	return results
}

func hasRule(rules []RuleKind, kind RuleKind) bool {
	for _, r := range rules {
		if r == kind {
			return true
		}
	}
	return false
}

func missing(name string) Result {
	return Failure(name, CodeMissingValue, fmt.Sprintf("%s is required", name))
}

func invalid(name, format string, args ...any) Result {
	return Failure(name, CodeInvalidInput, fmt.Sprintf("%s %s", name, fmt.Sprintf(format, args...)))
}

func evaluate(arg Argument, kind RuleKind) Result {
	switch kind {
	case RuleEmptyString:
		s, ok := stringValue(arg.Value)
		if !ok || s == "" {
			return missing(arg.Name)
		}
	case RuleEmptyArray:
		v := reflect.ValueOf(arg.Value)
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return invalid(arg.Name, "must be an array")
		}
		if v.Len() == 0 {
			return invalid(arg.Name, "must not be empty")
		}
	case RuleIsOneOf:
		for _, allowed := range arg.Values {
			if equalValue(arg.Value, allowed) {
				return Success()
			}
		}
		return invalid(arg.Name, "isn't one of the allowed values %v", arg.Values)
	case RuleZeroOrPositive:
		n, ok := numberValue(arg.Value)
		if !ok || n < 0 {
			return invalid(arg.Name, "must be zero or a positive number")
		}
	case RulePositiveInteger:
		n, ok := numberValue(arg.Value)
		if !ok || n <= 0 || n != math.Trunc(n) {
			return invalid(arg.Name, "must be a positive integer")
		}
	case RuleZeroOrPositiveInteger:
		n, ok := numberValue(arg.Value)
		if !ok || n < 0 || n != math.Trunc(n) {
			return invalid(arg.Name, "must be zero or a positive integer")
		}
	case RuleInRange:
		return evaluateInRange(arg)
	case RuleMatchesRegex:
		return evaluateRegex(arg)
	case RuleValidDate:
		if _, ok := dateValue(arg.Value); !ok {
			return invalid(arg.Name, "must be a valid ISO-8601 date")
		}
	case RuleIsBefore, RuleIsSameOrBefore:
		return evaluateDateOrder(arg, kind)
	case RuleIsBoolean:
		if _, ok := arg.Value.(bool); !ok {
			return invalid(arg.Name, "must be a boolean")
		}
	case RuleMinLength:
		return evaluateLength(arg, kind)
	case RuleMaxLength:
		return evaluateLength(arg, kind)
	case RuleAtLeastOne:
		return evaluateAtLeastOne(arg)
	case RuleConditionalMandatory:
		return evaluateConditionalMandatory(arg)
	default:
		// Unknown rule kinds are programmer errors, not business failures.
		panic(fmt.Sprintf("validation: unknown rule kind %q", kind))
	}
	return Success()
}

func evaluateInRange(arg Argument) Result {
	if len(arg.Values) < 2 {
		panic("validation: RuleInRange requires min and max values")
	}
	n, ok := numberValue(arg.Value)
	if !ok {
		return invalid(arg.Name, "must be a number")
	}
	minBound, okMin := numberValue(arg.Values[0])
	maxBound, okMax := numberValue(arg.Values[1])
	if !okMin || !okMax {
		panic("validation: RuleInRange bounds must be numbers")
	}
	if n < minBound || n > maxBound {
		return invalid(arg.Name, "must be between %v and %v", arg.Values[0], arg.Values[1])
	}
	return Success()
}

func evaluateRegex(arg Argument) Result {
	if len(arg.Values) < 1 {
		panic("validation: RuleMatchesRegex requires a pattern value")
	}
	pattern, ok := stringValue(arg.Values[0])
	if !ok {
		panic("validation: RuleMatchesRegex pattern must be a string")
	}
	s, ok := stringValue(arg.Value)
	if !ok {
		return invalid(arg.Name, "must be a string")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("validation: invalid pattern %q: %v", pattern, err))
	}
	if !re.MatchString(s) {
		return invalid(arg.Name, "has an invalid format")
	}
	return Success()
}

func evaluateDateOrder(arg Argument, kind RuleKind) Result {
	if len(arg.Values) < 1 {
		panic("validation: date comparison rules require a reference date")
	}
	value, ok := dateValue(arg.Value)
	if !ok {
		return invalid(arg.Name, "must be a valid ISO-8601 date")
	}
	reference, ok := dateValue(arg.Values[0])
	if !ok {
		return invalid(arg.Name, "has an invalid reference date")
	}
	switch kind {
	case RuleIsBefore:
		if !value.Before(reference) {
			return invalid(arg.Name, "must be before %s", reference.Format(time.RFC3339))
		}
	case RuleIsSameOrBefore:
		if value.After(reference) {
			return invalid(arg.Name, "must be the same as or before %s", reference.Format(time.RFC3339))
		}
	}
	return Success()
}

func evaluateLength(arg Argument, kind RuleKind) Result {
	if len(arg.Values) < 1 {
		panic("validation: length rules require a bound value")
	}
	bound, ok := numberValue(arg.Values[0])
	if !ok {
		panic("validation: length bound must be a number")
	}
	s, ok := stringValue(arg.Value)
	if !ok {
		return invalid(arg.Name, "must be a string")
	}
	switch kind {
	case RuleMinLength:
		if len(s) < int(bound) {
			return invalid(arg.Name, "must be at least %d characters", int(bound))
		}
	case RuleMaxLength:
		if len(s) > int(bound) {
			return invalid(arg.Name, "must be at most %d characters", int(bound))
		}
	}
	return Success()
}

// evaluateAtLeastOne checks that at least one of the named keys is set on the
// record. The value must be a map of field name to field value.
func evaluateAtLeastOne(arg Argument) Result {
	record, ok := arg.Value.(map[string]any)
	if !ok {
		panic("validation: RuleAtLeastOne requires a map[string]any value")
	}
	for _, key := range arg.Values {
		name, _ := stringValue(key)
		if v, present := record[name]; present && !isNil(v) {
			return Success()
		}
	}
	return Failure(arg.Name, CodeMissingValue,
		fmt.Sprintf("at least one of %v is required", arg.Values))
}

// evaluateConditionalMandatory checks that if any of the named keys is set,
// all of them are set. An all-absent record passes.
func evaluateConditionalMandatory(arg Argument) Result {
	record, ok := arg.Value.(map[string]any)
	if !ok {
		panic("validation: RuleConditionalMandatory requires a map[string]any value")
	}
	anySet := false
	var absent []string
	for _, key := range arg.Values {
		name, _ := stringValue(key)
		if v, present := record[name]; present && !isNil(v) {
			anySet = true
		} else {
			absent = append(absent, name)
		}
	}
	if !anySet || len(absent) == 0 {
		return Success()
	}
	results := make([]Result, 0, len(absent))
	for _, name := range absent {
		results = append(results, missing(name))
	}
	return Combine(results...)
}

// isNil reports whether v is nil, including typed nil pointers, slices,
// maps, and interfaces.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// stringValue extracts a string from v, dereferencing pointers and
// accepting named string types (status enums and the like).
func stringValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// numberValue extracts a float64 from any numeric type.
func numberValue(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// dateValue extracts a time.Time from either a time.Time or an RFC 3339
// string.
func dateValue(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, true
	case string:
		t, err := time.Parse(time.RFC3339, d)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// equalValue compares a guarded value against an allowed value, tolerating
// numeric type differences (an int argument matches a float64 allowed value).
func equalValue(a, b any) bool {
	if a == b {
		return true
	}
	na, okA := numberValue(a)
	nb, okB := numberValue(b)
	if okA && okB {
		return na == nb
	}
	sa, okA := stringValue(a)
	sb, okB := stringValue(b)
	if okA && okB {
		return sa == sb
	}
	return reflect.DeepEqual(a, b)
}
