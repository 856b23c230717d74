package network

import (
	"github.com/san-kum/deltasim/internal/channel"
	"github.com/san-kum/deltasim/internal/geom"
)

// OxbowView is a read-only copy of an oxbow lake.
type OxbowView struct {
	Points  []geom.Point
	CutTime float64
}

// ChannelView is a read-only copy of a channel for renderers and metrics.
type ChannelView struct {
	ID       ID
	Parent   ID
	Children []ID
	State    channel.State
	Width    float64
	Time     float64
	Points   []geom.Point
	Oxbows   []OxbowView
}

func (v ChannelView) Active() bool { return v.State == channel.Active }

type Snapshot struct {
	Channels []ChannelView
}

// Live returns the number of active channels in the snapshot.
func (s Snapshot) Live() int {
	count := 0
	for _, c := range s.Channels {
		if c.Active() {
			count++
		}
	}
	return count
}

// OxbowCount returns the number of lakes across all channels.
func (s Snapshot) OxbowCount() int {
	count := 0
	for _, c := range s.Channels {
		count += len(c.Oxbows)
	}
	return count
}

// Now returns the latest simulated time across channels.
func (s Snapshot) Now() float64 {
	now := 0.0
	for _, c := range s.Channels {
		if c.Time > now {
			now = c.Time
		}
	}
	return now
}

// Snapshot deep-copies the network. The result shares no memory with the
// arena and stays valid while the network keeps evolving.
func (n *Network) Snapshot() Snapshot {
	views := make([]ChannelView, len(n.nodes))
	for i, nd := range n.nodes {
		lakes := nd.ch.Oxbows()
		ov := make([]OxbowView, len(lakes))
		for k, l := range lakes {
			ov[k] = OxbowView{Points: l.Points(), CutTime: l.CutTime()}
		}
		views[i] = ChannelView{
			ID:       ID(i),
			Parent:   nd.parent,
			Children: append([]ID(nil), nd.children...),
			State:    nd.ch.State(),
			Width:    nd.ch.Width(),
			Time:     nd.ch.Time(),
			Points:   nd.ch.Points(),
			Oxbows:   ov,
		}
	}
	return Snapshot{Channels: views}
}
