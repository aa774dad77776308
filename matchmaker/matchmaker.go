// Package matchmaker builds matchmaker entries: the properties a user
// registers and the query that filters who they match with.
package matchmaker

import "fmt"

// rangeOp is a numeric comparison in a query item.
type rangeOp string

const (
	opGT  rangeOp = ">"
	opLT  rangeOp = "<"
	opGEQ rangeOp = ">="
	opLEQ rangeOp = "<="
)

// boolean marks a query item as required, excluded or optional.
type boolean int

const (
	optional boolean = iota
	required
	excluded
)

// QueryItemBuilder assembles one clause of a matchmaker query against a
// registered property.
type QueryItemBuilder struct {
	property string
	term     string
	op       rangeOp
	value    int
	isRange  bool
	hasQuery bool
	boolean  boolean
	boost    int64
}

// NewQueryItem starts a clause for the named property.
func NewQueryItem(property string) *QueryItemBuilder {
	return &QueryItemBuilder{property: property}
}

// Term matches the property against an exact term.
func (b *QueryItemBuilder) Term(term string) *QueryItemBuilder {
	b.term = term
	b.isRange = false
	b.hasQuery = true
	return b
}

// GT matches numeric properties strictly greater than value.
func (b *QueryItemBuilder) GT(value int) *QueryItemBuilder {
	return b.rangeQuery(opGT, value)
}

// GEQ matches numeric properties greater than or equal to value.
func (b *QueryItemBuilder) GEQ(value int) *QueryItemBuilder {
	return b.rangeQuery(opGEQ, value)
}

// LT matches numeric properties strictly less than value.
func (b *QueryItemBuilder) LT(value int) *QueryItemBuilder {
	return b.rangeQuery(opLT, value)
}

// LEQ matches numeric properties less than or equal to value.
func (b *QueryItemBuilder) LEQ(value int) *QueryItemBuilder {
	return b.rangeQuery(opLEQ, value)
}

func (b *QueryItemBuilder) rangeQuery(op rangeOp, value int) *QueryItemBuilder {
	b.op = op
	b.value = value
	b.isRange = true
	b.hasQuery = true
	return b
}

// Required marks the clause as mandatory ("+" prefix).
func (b *QueryItemBuilder) Required() *QueryItemBuilder {
	b.boolean = required
	return b
}

// Excluded marks the clause as forbidden ("-" prefix).
func (b *QueryItemBuilder) Excluded() *QueryItemBuilder {
	b.boolean = excluded
	return b
}

// Boost weights the clause relative to the others ("^n" suffix).
func (b *QueryItemBuilder) Boost(amount int64) *QueryItemBuilder {
	b.boost = amount
	return b
}

// Build renders the clause.
//
// Precondition: Term or one of the range operators must have been called.
func (b *QueryItemBuilder) Build() string {
	if !b.hasQuery {
		panic("query item built without a term or range")
	}

	var prefix string
	switch b.boolean {
	case required:
		prefix = "+"
	case excluded:
		prefix = "-"
	}

	var boost string
	if b.boost != 0 {
		boost = fmt.Sprintf("^%d", b.boost)
	}

	if b.isRange {
		return fmt.Sprintf("%sproperties.%s:%s%d%s", prefix, b.property, b.op, b.value, boost)
	}
	return fmt.Sprintf("%sproperties.%s:%s%s", prefix, b.property, b.term, boost)
}

// Matchmaker accumulates the properties and query clauses for one
// matchmaker entry.
type Matchmaker struct {
	minCount          int
	maxCount          int
	stringProperties  map[string]string
	numericProperties map[string]float64
	query             string
}

// New returns a matchmaker entry with the default 2 to 100 player range.
func New() *Matchmaker {
	return &Matchmaker{
		minCount:          2,
		maxCount:          100,
		stringProperties:  make(map[string]string),
		numericProperties: make(map[string]float64),
	}
}

// Min sets the minimum number of matched players.
func (m *Matchmaker) Min(min int) *Matchmaker {
	m.minCount = min
	return m
}

// Max sets the maximum number of matched players.
func (m *Matchmaker) Max(max int) *Matchmaker {
	m.maxCount = max
	return m
}

// AddStringProperty registers a string property.
//
// Precondition: no property with this name exists yet.
func (m *Matchmaker) AddStringProperty(name, value string) *Matchmaker {
	if m.PropertyExists(name) {
		panic(fmt.Sprintf("matchmaker property %q registered twice", name))
	}
	m.stringProperties[name] = value
	return m
}

// AddNumericProperty registers a numeric property.
//
// Precondition: no property with this name exists yet.
func (m *Matchmaker) AddNumericProperty(name string, value float64) *Matchmaker {
	if m.PropertyExists(name) {
		panic(fmt.Sprintf("matchmaker property %q registered twice", name))
	}
	m.numericProperties[name] = value
	return m
}

// PropertyExists reports whether a property with this name is registered.
func (m *Matchmaker) PropertyExists(name string) bool {
	if _, ok := m.stringProperties[name]; ok {
		return true
	}
	_, ok := m.numericProperties[name]
	return ok
}

// AddQueryItem appends one built clause to the query.
func (m *Matchmaker) AddQueryItem(item string) *Matchmaker {
	if m.query != "" {
		m.query += " "
	}
	m.query += item
	return m
}

// Query returns the assembled query string.
func (m *Matchmaker) Query() string { return m.query }

// MinCount returns the minimum player count.
func (m *Matchmaker) MinCount() int { return m.minCount }

// MaxCount returns the maximum player count.
func (m *Matchmaker) MaxCount() int { return m.maxCount }

// StringProperties returns the registered string properties.
func (m *Matchmaker) StringProperties() map[string]string { return m.stringProperties }

// NumericProperties returns the registered numeric properties.
func (m *Matchmaker) NumericProperties() map[string]float64 { return m.numericProperties }
