package getaddr

import (
	"errors"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLookupIP replaces net.LookupIP during the tests.
var mockLookupIP = func(name string) ([]net.IP, error) {
	return nil, errors.New("not implemented")
}

var originalLookupIP func(string) ([]net.IP, error)

func TestMain(m *testing.M) {
	originalLookupIP = netLookupIP
	netLookupIP = mockLookupIP

	code := m.Run()

	netLookupIP = originalLookupIP
	os.Exit(code)
}

func TestErrUnresolvable_Error(t *testing.T) {
	err := ErrUnresolvable{name: "example.com"}
	assert.Equal(t, "name example.com is unresolvable", err.Error())
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		mockFunc func(string) ([]net.IP, error)
		expected []net.IP
		err      error
	}{
		{
			name: "single address",
			mockFunc: func(name string) ([]net.IP, error) {
				return []net.IP{net.ParseIP("192.168.1.1")}, nil
			},
			expected: []net.IP{net.ParseIP("192.168.1.1")},
		},
		{
			name: "no address",
			mockFunc: func(name string) ([]net.IP, error) {
				return []net.IP{}, nil
			},
			err: ErrUnresolvable{name: "example.com"},
		},
		{
			name: "multiple addresses",
			mockFunc: func(name string) ([]net.IP, error) {
				return []net.IP{
					net.ParseIP("192.168.1.1"),
					net.ParseIP("192.168.1.2"),
				}, nil
			},
			expected: []net.IP{
				net.ParseIP("192.168.1.1"),
				net.ParseIP("192.168.1.2"),
			},
		},
		{
			name: "resolver error",
			mockFunc: func(name string) ([]net.IP, error) {
				return nil, errors.New("lookup failed")
			},
			err: errors.New("lookup failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			netLookupIP = tt.mockFunc

			ips, err := Lookup("example.com")
			if tt.err != nil {
				assert.EqualError(t, err, tt.err.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, ips)
		})
	}

	netLookupIP = mockLookupIP
}

func TestFirst(t *testing.T) {
	netLookupIP = func(name string) ([]net.IP, error) {
		return []net.IP{
			net.ParseIP("fe80::1"),
			net.ParseIP("192.168.1.1"),
		}, nil
	}
	defer func() { netLookupIP = mockLookupIP }()

	ip, err := First("example.com")
	require.NoError(t, err)
	assert.Equal(t, net.ParseIP("fe80::1"), ip)
}
