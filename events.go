package plume

import "github.com/akmonengine/plume/actor"

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CollisionEnterEvent fires on the first step a body pair is in contact.
type CollisionEnterEvent struct {
	BodyA *actor.Body
	BodyB *actor.Body
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

// CollisionStayEvent fires on every subsequent step a pair stays in
// contact.
type CollisionStayEvent struct {
	BodyA *actor.Body
	BodyB *actor.Body
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

// CollisionExitEvent fires on the first step a previously contacting pair
// is apart.
type CollisionExitEvent struct {
	BodyA *actor.Body
	BodyB *actor.Body
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

type pairKey struct {
	bodyA *actor.Body
	bodyB *actor.Body
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *actor.Body) pairKey {
	if bodyB.ID() < bodyA.ID() {
		bodyA, bodyB = bodyB, bodyA
	}
	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

// Events tracks contacting body pairs across steps and notifies listeners
// of contact transitions. Wire one into a Collision so it records contacts,
// and into the Physics orchestrator (or call Flush directly once per step)
// to emit the events.
//
// A nil *Events is valid and records nothing, so event support costs
// nothing when unused.
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() *Events {
	return &Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContact marks a pair as contacting during the current step.
func (e *Events) recordContact(bodyA, bodyB *actor.Body) {
	if e == nil {
		return
	}
	e.currentActivePairs[makePairKey(bodyA, bodyB)] = true
}

// processCollisionEvents compares current and previous pairs to detect
// Enter/Stay/Exit transitions.
func (e *Events) processCollisionEvents() {
	for pair := range e.currentActivePairs {
		if e.previousActivePairs[pair] {
			// Pair was active before and still is, Stay
			e.buffer = append(e.buffer, CollisionStayEvent{
				BodyA: pair.bodyA,
				BodyB: pair.bodyB,
			})
		} else {
			// New pair, Enter
			e.buffer = append(e.buffer, CollisionEnterEvent{
				BodyA: pair.bodyA,
				BodyB: pair.bodyB,
			})
		}
	}

	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			// Pair was active but is no longer, Exit
			e.buffer = append(e.buffer, CollisionExitEvent{
				BodyA: pair.bodyA,
				BodyB: pair.bodyB,
			})
		}
	}

	// Swap for next step and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// Flush detects the contact transitions of the finished step, sends all
// buffered events and clears the buffer. Called once per step, after all
// substeps.
func (e *Events) Flush() {
	if e == nil {
		return
	}
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
