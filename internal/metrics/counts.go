package metrics

import "github.com/san-kum/deltasim/internal/network"

// LiveChannels reports the number of active channels after the last tick.
type LiveChannels struct {
	live int
}

func NewLiveChannels() *LiveChannels { return &LiveChannels{} }

func (m *LiveChannels) Name() string { return "live_channels" }

func (m *LiveChannels) Observe(_ network.Snapshot, rep network.TickReport) {
	m.live = rep.Live
}

func (m *LiveChannels) Value() float64 { return float64(m.live) }
func (m *LiveChannels) Reset()         { m.live = 0 }

// TotalChannels reports every channel ever created, terminal ones included.
type TotalChannels struct {
	total int
}

func NewTotalChannels() *TotalChannels { return &TotalChannels{} }

func (m *TotalChannels) Name() string { return "total_channels" }

func (m *TotalChannels) Observe(_ network.Snapshot, rep network.TickReport) {
	m.total = rep.Total
}

func (m *TotalChannels) Value() float64 { return float64(m.total) }
func (m *TotalChannels) Reset()         { m.total = 0 }

type OxbowCount struct {
	count int
}

func NewOxbowCount() *OxbowCount { return &OxbowCount{} }

func (m *OxbowCount) Name() string { return "oxbow_lakes" }

func (m *OxbowCount) Observe(snap network.Snapshot, _ network.TickReport) {
	m.count = snap.OxbowCount()
}

func (m *OxbowCount) Value() float64 { return float64(m.count) }
func (m *OxbowCount) Reset()         { m.count = 0 }

// BranchEvents accumulates bifurcations over the run.
type BranchEvents struct {
	events int
}

func NewBranchEvents() *BranchEvents { return &BranchEvents{} }

func (m *BranchEvents) Name() string { return "branch_events" }

func (m *BranchEvents) Observe(_ network.Snapshot, rep network.TickReport) {
	m.events += rep.Branched
}

func (m *BranchEvents) Value() float64 { return float64(m.events) }
func (m *BranchEvents) Reset()         { m.events = 0 }

// CutoffRate is the mean number of neck cutoffs per observed tick.
type CutoffRate struct {
	cutoffs int
	samples int
}

func NewCutoffRate() *CutoffRate { return &CutoffRate{} }

func (m *CutoffRate) Name() string { return "cutoff_rate" }

func (m *CutoffRate) Observe(_ network.Snapshot, rep network.TickReport) {
	m.cutoffs += rep.Cutoffs
	m.samples++
}

func (m *CutoffRate) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.cutoffs) / float64(m.samples)
}

func (m *CutoffRate) Reset() {
	m.cutoffs = 0
	m.samples = 0
}
