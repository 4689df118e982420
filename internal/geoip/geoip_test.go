package geoip

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupJSONFallback(t *testing.T) {
	g, err := Init("testdata/locations.json")
	require.NoError(t, err)
	defer func() { _ = g.Close() }()

	assert.Equal(t, Location{State: "TX", City: "Austin", Pincode: "73301"}, g.Lookup(net.ParseIP("192.0.2.5")))
	assert.Equal(t, Location{State: "KA"}, g.Lookup(net.ParseIP("203.0.113.9")))
	assert.Equal(t, Location{}, g.Lookup(net.ParseIP("10.0.0.1")))
}

func TestLookupNil(t *testing.T) {
	var g *GeoIP
	assert.Equal(t, Location{}, g.Lookup(net.ParseIP("192.0.2.5")))
	assert.NoError(t, g.Close())
}

func TestInitMissingFile(t *testing.T) {
	_, err := Init("testdata/does-not-exist.mmdb")
	assert.Error(t, err)
}
