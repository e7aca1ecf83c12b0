// Package coerce builds the instruction lists §1 describes as the boundary
// with the external type-coercion/parse layer (component K): plain data
// describing how to turn a raw response map into a typed record. The core
// never owns the real typed-struct layer (it's explicitly out of scope),
// but it does own this instruction format and ships a reference
// interpreter so tests can exercise response_transformer output end to end.
package coerce

import "fmt"

// Kind is the closed set of field conversions an Instruction can perform.
type Kind string

const (
	KindString      Kind = "string"
	KindInt         Kind = "int"
	KindFloat       Kind = "float"
	KindDecimal     Kind = "decimal"
	KindBool        Kind = "bool"
	KindTimestampMS Kind = "timestamp_ms"
	KindPassthrough Kind = "passthrough"
)

// Instruction maps one source field in a raw response map to one
// destination field in the typed record, with a conversion Kind. Optional
// is true when a missing Source is not an error (the destination is simply
// omitted).
type Instruction struct {
	Dest     string
	Source   string
	Kind     Kind
	Optional bool
}

// Program is the ordered instruction list for one endpoint's response
// shape. Order does not affect the result (each instruction writes a
// distinct Dest) but is preserved for readability and deterministic
// diffing of hand-authored programs.
type Program []Instruction

// Registry maps an endpoint name to the Program that coerces its response.
// An endpoint absent from the registry passes its body through unchanged,
// matching the "coercion glue" role described for component K: this module
// only describes the instruction list, it does not mandate coverage.
type Registry map[string]Program

// Coercer adapts a Registry into exchange.CoercionCollaborator's shape
// (Coerce(endpoint string, body any) (any, error)) by structural typing; no
// import of the exchange package is needed or wanted here.
type Coercer struct {
	Programs Registry
}

// NewCoercer builds a Coercer over the given registry.
func NewCoercer(reg Registry) *Coercer {
	return &Coercer{Programs: reg}
}

// Coerce runs endpoint's program against body if one is registered,
// otherwise returns body unchanged.
func (c *Coercer) Coerce(endpoint string, body any) (any, error) {
	program, ok := c.Programs[endpoint]
	if !ok {
		return body, nil
	}
	m, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("coerce %s: body is %T, not a map", endpoint, body)
	}
	return Interpret(program, m)
}
