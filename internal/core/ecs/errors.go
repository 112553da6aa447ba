package ecs

import "errors"

var (
	// ErrNotFound is returned when a component or entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStaleEntity is returned for handles whose entity has been purged.
	ErrStaleEntity = errors.New("stale entity")
	// ErrUnknownPrefab is returned when instantiating an unregistered prefab name.
	ErrUnknownPrefab = errors.New("unknown prefab")
)
