package driver

import (
	"fmt"
	"sort"

	"github.com/joss/saydo/internal/config"
	"github.com/joss/saydo/internal/daemon"
	"github.com/joss/saydo/internal/domain"
)

// Constructor builds a driver over a daemon caller.
type Constructor func(Caller) Driver

// Constructors maps driver names to their constructors.
var Constructors = map[string]Constructor{
	domain.DriverTelegram: func(c Caller) Driver { return NewTelegram(c) },
	domain.DriverChrome:   func(c Caller) Driver { return NewChrome(c) },
}

// Registry holds the enabled drivers.
type Registry struct {
	drivers       map[string]Driver
	defaultDriver string
}

// NewRegistry creates a registry from explicit drivers.
func NewRegistry(defaultDriver string, drivers ...Driver) *Registry {
	r := &Registry{drivers: make(map[string]Driver), defaultDriver: defaultDriver}
	for _, d := range drivers {
		r.drivers[d.Name()] = d
	}
	return r
}

// FromConfig builds every enabled driver that has a constructor, each with
// its own daemon client.
func FromConfig(f *config.File) *Registry {
	env := config.Env()
	r := NewRegistry(f.DefaultDriver)
	for _, name := range f.Enabled() {
		ctor, ok := Constructors[name]
		if !ok {
			continue
		}
		dc := f.Drivers[name]
		url := dc.HammerURL
		if url == "" {
			url = env.HammerURL
		}
		r.drivers[name] = ctor(daemon.New(url, dc.TimeoutOr(env.Timeout)))
	}
	return r
}

// Get returns the named driver; an empty name selects the default.
func (r *Registry) Get(name string) (Driver, error) {
	if name == "" {
		name = r.defaultDriver
	}
	d, ok := r.drivers[name]
	if !ok {
		return nil, domain.NewError(domain.KindUnsupported, "driver %q not found or not enabled", name)
	}
	return d, nil
}

// Names lists registered drivers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.drivers))
	for n := range r.drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default is the driver used for commands without one.
func (r *Registry) Default() string { return r.defaultDriver }

func (r *Registry) String() string {
	return fmt.Sprintf("drivers%v default=%s", r.Names(), r.defaultDriver)
}
