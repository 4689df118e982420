package geoip

import (
	"encoding/json"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// Location is the viewer location that can be derived from an IP address.
// Empty fields mean the database had no answer for that dimension.
type Location struct {
	State   string
	City    string
	Pincode string
}

// GeoIP provides location lookup using a MaxMind City DB or a JSON fallback.
type GeoIP struct {
	db       *geoip2.Reader
	fallback []record
}

type record struct {
	net *net.IPNet
	loc Location
}

// Init opens the GeoIP2 database located at path. It returns a GeoIP instance.
// When the file is not an mmdb it is read as a JSON list of
// {"net","state","city","pincode"} entries.
func Init(path string) (*GeoIP, error) {
	g := &GeoIP{}
	db, err := geoip2.Open(path)
	if err == nil {
		g.db = db
		return g, nil
	}

	data, jerr := os.ReadFile(path)
	if jerr != nil {
		return nil, err
	}
	var entries []struct {
		Net     string `json:"net"`
		State   string `json:"state"`
		City    string `json:"city"`
		Pincode string `json:"pincode"`
	}
	if jerr = json.Unmarshal(data, &entries); jerr != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, n, perr := net.ParseCIDR(e.Net); perr == nil {
			g.fallback = append(g.fallback, record{net: n, loc: Location{State: e.State, City: e.City, Pincode: e.Pincode}})
		}
	}
	return g, nil
}

// Lookup returns the location for ip. A nil GeoIP or an unknown address
// yields an empty Location.
func (g *GeoIP) Lookup(ip net.IP) Location {
	if g == nil || ip == nil {
		return Location{}
	}
	if g.db != nil {
		rec, err := g.db.City(ip)
		if err == nil {
			var loc Location
			if len(rec.Subdivisions) > 0 {
				loc.State = rec.Subdivisions[0].IsoCode
			}
			loc.City = rec.City.Names["en"]
			loc.Pincode = rec.Postal.Code
			return loc
		}
	}
	for _, r := range g.fallback {
		if r.net.Contains(ip) {
			return r.loc
		}
	}
	return Location{}
}

// Close releases resources associated with the database.
func (g *GeoIP) Close() error {
	if g != nil && g.db != nil {
		return g.db.Close()
	}
	return nil
}
