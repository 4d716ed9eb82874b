package rolelog

import "github.com/rolelog/rolelog-go/internal/celfilter"

// Decision is the outcome of filtering an event by role.
type Decision int

const (
	// Emit writes the record normally.
	Emit Decision = iota
	// Suppress drops the event before identity resolution and formatting.
	Suppress
	// EmitEmphasized writes the record wrapped in emphasis markers.
	EmitEmphasized
)

func (d Decision) String() string {
	switch d {
	case Emit:
		return "emit"
	case Suppress:
		return "suppress"
	case EmitEmphasized:
		return "emphasize"
	default:
		return "unknown"
	}
}

// Filter decides per role whether an event is written, and how.
// Role names are matched exactly.
type Filter struct {
	ignore    map[string]struct{}
	emphasize map[string]struct{}

	// suppressWhen additionally suppresses events it matches.
	suppressWhen *celfilter.Filter
}

// NewFilter builds a Filter from the ignore and emphasize role lists.
func NewFilter(ignore, emphasize []string) *Filter {
	return &Filter{
		ignore:    toSet(ignore),
		emphasize: toSet(emphasize),
	}
}

// Decide returns the decision for role. Emphasis takes precedence over
// ignore, so a role listed in both is written emphasized. A nil Filter
// emits everything.
func (f *Filter) Decide(role string) Decision {
	if f == nil {
		return Emit
	}
	if _, ok := f.emphasize[role]; ok {
		return EmitEmphasized
	}
	if _, ok := f.ignore[role]; ok {
		return Suppress
	}
	return Emit
}

// Classify returns the decision for ev. It applies Decide to the role and
// then suppresses emitted events matching the suppress expression.
// Emphasized events are never suppressed. If the expression fails to
// evaluate, the role decision is returned with the error.
func (f *Filter) Classify(ev *Event) (Decision, error) {
	if f == nil {
		return Emit, nil
	}
	d := f.Decide(ev.Role)
	if d != Emit || f.suppressWhen == nil {
		return d, nil
	}
	match, err := f.suppressWhen.Match(ev)
	if err != nil {
		return d, err
	}
	if match {
		return Suppress, nil
	}
	return d, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
