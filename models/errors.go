package models

import "errors"

var (
	ErrRunNotFound    = errors.New("simulation run not found")
	ErrNoPath         = errors.New("no path between stations")
	ErrUnknownStation = errors.New("unknown station")
	ErrInvalidGrid    = errors.New("invalid facility grid")
	ErrNoDatabase     = errors.New("database not initialized")
	ErrNoTasks        = errors.New("route has no tasks")
	ErrUnknownAction  = errors.New("unknown control action")
	ErrDemoTooLarge   = errors.New("demo dataset too large")
)
