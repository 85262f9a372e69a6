package database

import (
	"fmt"
)

// RegistrableComponentConfig is a configuration block that can be used to
// determine which registrable component should be initialized and pass custom
// configuration to it.
type RegistrableComponentConfig struct {
	Type    string
	Options map[string]interface{}
}

var drivers = make(map[string]Driver)

// Driver is a function that opens a Datastore specified by its database
// driver type and specific configuration.
type Driver func(RegistrableComponentConfig) (Datastore, error)

// Register makes a Constructor available by the provided name.
//
// If this function is called twice with the same name or if the Constructor is
// nil, it panics.
func Register(name string, driver Driver) {
	if driver == nil {
		panic("database: could not register nil Driver")
	}
	if _, dup := drivers[name]; dup {
		panic("database: could not register duplicate Driver: " + name)
	}
	drivers[name] = driver
}

// Open opens a Datastore specified by a configuration.
func Open(cfg RegistrableComponentConfig) (Datastore, error) {
	driver, ok := drivers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("database: unknown Driver %q (forgotten configuration or import?)", cfg.Type)
	}
	return driver(cfg)
}

// Datastore represents the required operations on a persistent data store for
// an artifact sanity deployment.
type Datastore interface {
	// InsertDistro stores a Distro and returns its ID.
	InsertDistro(distro Distro) (int, error)

	// ListDistros returns the distros that runs have been recorded against.
	ListDistros() ([]Distro, error)

	// InsertRun stores a new Run and returns its ID.
	InsertRun(run Run) (int, error)

	// FinishRun closes a Run with its final status.
	FinishRun(id int, status string) error

	// InsertCheckResult attaches a CheckResult to an existing Run.
	InsertCheckResult(runID int, result CheckResult) error

	// FindRun retrieves a Run, optionally with its CheckResults.
	FindRun(id int, withResults bool) (Run, error)

	// ListRuns returns all recorded runs, most recent first, without their
	// CheckResults.
	ListRuns() ([]Run, error)

	// DeleteRun removes a Run and its CheckResults.
	DeleteRun(id int) error

	// InsertKeyValue stores (or updates) a single key / value tuple.
	InsertKeyValue(key, value string) error

	// GetKeyValue retrieves a value from the given key.
	// It returns an empty string if there is no such key.
	GetKeyValue(key string) (string, error)

	// Ping returns whether the database is accessible.
	Ping() bool

	// Close closes the database and frees any allocated resource.
	Close()
}
