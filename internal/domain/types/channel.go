package types

import (
	"fmt"
	"strings"

	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

// Channel identifies a live-tracking event stream. Channels are typed
// values, never ad-hoc string concatenation at the call site.
type Channel string

// ChannelAllAmbulances carries every ambulance's position snapshots.
const ChannelAllAmbulances Channel = "ambulances"

const ambulanceChannelPrefix = "ambulance."

// AmbulanceChannel returns the per-ambulance channel.
func AmbulanceChannel(id uuid.UUID) Channel {
	return Channel(ambulanceChannelPrefix + id.String())
}

// AmbulanceID extracts the ambulance id from a per-ambulance channel.
// The second result is false for the global channel or a malformed name.
func (c Channel) AmbulanceID() (uuid.UUID, bool) {
	s := string(c)
	if !strings.HasPrefix(s, ambulanceChannelPrefix) {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(s, ambulanceChannelPrefix))
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

func (c Channel) String() string {
	return string(c)
}

// ParseChannel validates a channel name coming from a client.
func ParseChannel(s string) (Channel, error) {
	if s == string(ChannelAllAmbulances) {
		return ChannelAllAmbulances, nil
	}
	c := Channel(s)
	if _, ok := c.AmbulanceID(); ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown channel %q", s)
}
