package experiment

import "github.com/san-kum/deltasim/internal/network"

type Metric interface {
	Name() string
	Observe(snap network.Snapshot, rep network.TickReport)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(rep network.TickReport, snap network.Snapshot)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(rep network.TickReport, snap network.Snapshot)

func (f ObserverFunc) OnTick(rep network.TickReport, snap network.Snapshot) { f(rep, snap) }

// Sample is one row of the per-tick series.
type Sample struct {
	Tick     int
	Time     float64
	Live     int
	Total    int
	Branched int
	Cutoffs  int
	Oxbows   int
	Metrics  map[string]float64
}

type Result struct {
	Reports []network.TickReport
	Series  []Sample
	Metrics map[string]float64
	Final   network.Snapshot
	// Exhausted is set when the run stopped early with no live channels.
	Exhausted bool
}
