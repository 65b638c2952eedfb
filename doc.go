/*
Package depot provides an Entity-Component-System (ECS) runtime built around
incrementally maintained filters.

Entities are generation-checked handles into a World. Components are plain Go
values stored in one dense pool per type and attached to entities as
(type, slot) pairs. A Filter caches the entities matching a set of required
and forbidden component types and is updated on every attach and detach, so
systems never scan the world.

Core Concepts:

  - Entity: A (id, generation) handle. Stale handles are rejected.
  - Component: A data type registered with FactoryNewComponent.
  - Pool: Dense storage with free-list recycling for one component type.
  - Filter: The live result set of an And/Not query.
  - Systems: An ordered group of systems run through Init, Run and Destroy.

Basic Usage:

	schema := table.Factory.NewSchema()
	world := depot.Factory.NewWorld(schema, depot.DefaultConfig())

	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()

	e := world.NewEntity()
	position.Replace(e, Position{})
	velocity.Replace(e, Velocity{X: 1, Y: 1})

	moving := world.Filter(depot.Factory.NewQuery().And(position, velocity))
	for i := range moving.All() {
		pos := position.GetFromFilter(moving, i)
		vel := velocity.GetFromFilter(moving, i)
		pos.X += vel.X
		pos.Y += vel.Y
	}

An entity is destroyed as soon as its last component is removed. Filters may
be mutated freely while they are being iterated: changes are queued and
applied when the iteration ends.

Everything runs on the caller's goroutine. A World must not be shared between
goroutines without external synchronisation.
*/
package depot
