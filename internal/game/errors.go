package game

import "errors"

var (
	// ErrInvalidTarget is returned when binding or damaging a zero or
	// destroyed handle. The caller's state is left unchanged.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrConfigurationMissing marks an optional collaborator or setting that
	// is absent (respawn point, spawn template, rotation pivot). The action
	// degrades to a no-op.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrInvalidDamage is returned for negative or NaN damage amounts.
	ErrInvalidDamage = errors.New("invalid damage amount")

	// ErrUnknownTemplate is returned when a spawn names an unregistered template.
	ErrUnknownTemplate = errors.New("unknown spawn template")
)
