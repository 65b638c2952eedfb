package depot

type Operation int

const (
	OpAnd Operation = iota
	OpNot
)

// query collects the shape of a filter: components an entity must have
// (And) and components it must not have (Not). Declared order is kept.
type query struct {
	included []Component
	excluded []Component
}

func newQuery() Query {
	return &query{}
}

func (q *query) And(items ...interface{}) Query {
	q.included = append(q.included, q.processItems(OpAnd, items...)...)
	return q
}

func (q *query) Not(items ...interface{}) Query {
	q.excluded = append(q.excluded, q.processItems(OpNot, items...)...)
	return q
}

func (q *query) processItems(op Operation, items ...interface{}) []Component {
	components := make([]Component, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		default:
			panic(QueryItemError{Op: op, Item: item})
		}
	}
	return components
}

func (q *query) Included() []Component {
	return q.included
}

func (q *query) Excluded() []Component {
	return q.excluded
}
