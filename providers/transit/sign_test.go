package transit

import (
	"strings"
	"testing"
)

const (
	testKey   = "9c132d31-6a30-4cac-8d8b-8a1970834799"
	testDevID = "3000176"
)

func TestSignPath_FixedVectors(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{
			"/v3/stops/location/-37.8183,144.9671?max_distance=500&max_results=10",
			"/v3/stops/location/-37.8183,144.9671?max_distance=500&max_results=10&devid=3000176&signature=0DFFFFCE77A41DF0B61264061E283958AD078A95",
		},
		{
			"/v3/departures/route_type/0/stop/1071?max_results=3",
			"/v3/departures/route_type/0/stop/1071?max_results=3&devid=3000176&signature=BA4650498990810AEB58B43F54277B073A18FACB",
		},
	}
	for _, c := range cases {
		if got := SignPath(c.path, testDevID, testKey); got != c.want {
			t.Errorf("SignPath(%q):\n got %s\nwant %s", c.path, got, c.want)
		}
	}
}

func TestSignPath_ParameterOrder(t *testing.T) {
	signed := SignPath("/v3/stops/location/0,0", testDevID, testKey)
	di := strings.Index(signed, "devid=")
	si := strings.Index(signed, "signature=")
	if di < 0 || si < 0 || di > si {
		t.Errorf("devid must precede signature: %s", signed)
	}
	if !strings.HasSuffix(signed[:si-1], "devid="+testDevID) {
		t.Errorf("signature must be the final parameter: %s", signed)
	}
}

func TestSignPath_NoQuery(t *testing.T) {
	signed := SignPath("/v3/route_types", testDevID, testKey)
	if !strings.HasPrefix(signed, "/v3/route_types?devid="+testDevID+"&signature=") {
		t.Errorf("expected ? separator for bare path: %s", signed)
	}
}
