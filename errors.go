package plume

import "errors"

var (
	// ErrInvalidCollisionGeometry reports a contact normal whose magnitude
	// deviates from 1 beyond tolerance.
	ErrInvalidCollisionGeometry = errors.New("invalid collision geometry")

	// ErrLayerLengthMismatch reports zipped tether layers of unequal length.
	ErrLayerLengthMismatch = errors.New("tethered layers have unequal lengths")

	// ErrUnknownLayer reports a force binding selector naming a layer the
	// state does not have. A typo would otherwise silently bind the force to
	// nothing.
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrMazeSubsteps reports a maze corrective driven with more than one
	// substep. Maze velocities must be enacted immediately, so the
	// orchestrator cannot subdivide the step.
	ErrMazeSubsteps = errors.New("maze physics requires exactly one substep")

	// ErrOffMazeGrid reports an avatar that is not on any maze grid line.
	// This happens when a position is initialized or forced off the grid, or
	// when a later corrective adjusts velocities produced by the maze
	// physics. MazePhysics must be the last corrective so that its
	// velocities are enacted unchanged.
	ErrOffMazeGrid = errors.New("body is not on the maze grid")
)
