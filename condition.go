package relay

// Condition gates a route match. Every condition on a route must pass before
// the route counts as matched and contributes middleware.
type Condition interface {
	IsValid(event *Event, cfg *RouteConfig) bool
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func(event *Event, cfg *RouteConfig) bool

// IsValid implements the Condition interface.
func (f ConditionFunc) IsValid(event *Event, cfg *RouteConfig) bool {
	return f(event, cfg)
}

// HasFields returns a Condition that passes when all payload paths exist.
func HasFields(paths ...string) Condition {
	return hasFields{paths: paths}
}

type hasFields struct {
	paths []string
}

func (c hasFields) IsValid(event *Event, _ *RouteConfig) bool {
	for _, p := range c.paths {
		if !event.HasField(p) {
			return false
		}
	}
	return true
}

// FieldEquals returns a Condition that passes when the payload path exists
// and equals the given string value.
func FieldEquals(path, value string) Condition {
	return fieldEquals{path: path, value: value}
}

type fieldEquals struct {
	path  string
	value string
}

func (c fieldEquals) IsValid(event *Event, _ *RouteConfig) bool {
	s, ok := event.FieldString(c.path)
	return ok && s == c.value
}

// And returns a Condition that passes when all conditions pass.
func And(cs ...Condition) Condition {
	return and{cs: cs}
}

type and struct {
	cs []Condition
}

func (c and) IsValid(event *Event, cfg *RouteConfig) bool {
	for _, cond := range c.cs {
		if !cond.IsValid(event, cfg) {
			return false
		}
	}
	return true
}

// Or returns a Condition that passes when any condition passes.
func Or(cs ...Condition) Condition {
	return or{cs: cs}
}

type or struct {
	cs []Condition
}

func (c or) IsValid(event *Event, cfg *RouteConfig) bool {
	for _, cond := range c.cs {
		if cond.IsValid(event, cfg) {
			return true
		}
	}
	return false
}
