package depot

import "fmt"

// The errors below are raised with panic: each one marks misuse of the
// API rather than a condition a caller is expected to handle.

type NullEntityError struct {
	Op string
}

func (e NullEntityError) Error() string {
	return fmt.Sprintf("%s: null entity", e.Op)
}

type StaleEntityError struct {
	Op      string
	Entity  Entity
	Current uint16
}

func (e StaleEntityError) Error() string {
	return fmt.Sprintf("%s: stale entity %d (gen %d, current gen %d)", e.Op, e.Entity.id, e.Entity.gen, e.Current)
}

type WorldDestroyedError struct {
	Op string
}

func (e WorldDestroyedError) Error() string {
	return fmt.Sprintf("%s: world is destroyed", e.Op)
}

type EntityMoveError struct {
	Source, Target Entity
	Reason         string
}

func (e EntityMoveError) Error() string {
	return fmt.Sprintf("cannot move %v to %v: %s", e.Source, e.Target, e.Reason)
}

type FilterShapeError struct {
	Include, Exclude []int32
	Reason           string
}

func (e FilterShapeError) Error() string {
	return fmt.Sprintf("invalid filter include=%v exclude=%v: %s", e.Include, e.Exclude, e.Reason)
}

type FilterMembershipError struct {
	Entity           Entity
	Include, Exclude []int32
	Reason           string
}

func (e FilterMembershipError) Error() string {
	return fmt.Sprintf("filter include=%v exclude=%v: %s: %v", e.Include, e.Exclude, e.Reason, e.Entity)
}

type ComponentNotIncludedError struct {
	Component Component
	Include   []int32
}

func (e ComponentNotIncludedError) Error() string {
	return fmt.Sprintf("component %s is not included in filter %v", componentName(e.Component), e.Include)
}

type QueryItemError struct {
	Op   Operation
	Item interface{}
}

func (e QueryItemError) Error() string {
	return fmt.Sprintf("unsupported query item %T", e.Item)
}

type LockBalanceError struct {
	Include, Exclude []int32
	Op               string
}

func (e LockBalanceError) Error() string {
	return fmt.Sprintf("%s: unbalanced lock on filter include=%v exclude=%v", e.Op, e.Include, e.Exclude)
}

type SystemsStateError struct {
	Systems string
	Op      string
	State   string
}

func (e SystemsStateError) Error() string {
	return fmt.Sprintf("systems %q: %s not allowed: %s", e.Systems, e.Op, e.State)
}

type SystemNameError struct {
	Systems string
	Name    string
	Reason  string
}

func (e SystemNameError) Error() string {
	return fmt.Sprintf("systems %q: system name %q: %s", e.Systems, e.Name, e.Reason)
}

type MissingServiceError struct {
	Type string
}

func (e MissingServiceError) Error() string {
	return fmt.Sprintf("no service injected for %s", e.Type)
}

func componentName(c Component) string {
	if named, ok := c.(interface{ TypeName() string }); ok {
		return named.TypeName()
	}
	return fmt.Sprintf("%T", c)
}
