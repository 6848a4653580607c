package getaddr

import (
	"fmt"
	"net"
)

// netLookupIP is a variable so tests can mock the resolver.
var netLookupIP = net.LookupIP

type (
	ErrUnresolvable struct {
		name string
	}
)

func (e ErrUnresolvable) Error() string {
	return fmt.Sprintf("name %s is unresolvable", e.name)
}

// Lookup returns the addresses name resolves to. The first entry is the
// preferred address. IP literals resolve to themselves.
func Lookup(name string) ([]net.IP, error) {
	ips, err := netLookupIP(name)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, ErrUnresolvable{name: name}
	}
	return ips, nil
}

// First returns the preferred address for name.
func First(name string) (net.IP, error) {
	ips, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return ips[0], nil
}
