// Package nameservice resolves the names of the services a controller node
// accepts requests for.
package nameservice

import (
	"errors"
	"strings"
)

// DefaultServices is the catalog used when none is configured.
var DefaultServices = []string{
	"Passport Renewal",
	"Scholarship Application",
	"Medical Record Access",
	"Background Check",
	"Electricity Bill Payment",
}

// NameService maintains the catalog of service names for lookup.
type NameService struct {
	names    []string
	services map[string]string
}

// New constructs a name service for the specified service names. Lookups
// ignore case and surrounding spaces.
func New(names []string) (*NameService, error) {
	ns := NameService{
		services: make(map[string]string),
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		key := normalize(name)
		if _, exists := ns.services[key]; exists {
			continue
		}

		ns.services[key] = name
		ns.names = append(ns.names, name)
	}

	if len(ns.names) == 0 {
		return nil, errors.New("service catalog is empty")
	}

	return &ns, nil
}

// Lookup returns the catalog spelling for the specified service name.
func (ns *NameService) Lookup(name string) (string, bool) {
	service, exists := ns.services[normalize(name)]
	return service, exists
}

// Copy returns a copy of the service names in catalog order.
func (ns *NameService) Copy() []string {
	names := make([]string, len(ns.names))
	copy(names, ns.names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
