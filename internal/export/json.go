package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/deltasim/internal/geom"
	"github.com/san-kum/deltasim/internal/network"
)

type ChannelData struct {
	ID       int          `json:"id"`
	Parent   int          `json:"parent"`
	Children []int        `json:"children,omitempty"`
	State    string       `json:"state"`
	Width    float64      `json:"width"`
	Time     float64      `json:"time"`
	Points   [][2]float64 `json:"points"`
	Oxbows   []OxbowData  `json:"oxbows,omitempty"`
}

type OxbowData struct {
	CutTime float64      `json:"cut_time"`
	Points  [][2]float64 `json:"points"`
}

type ExportData struct {
	Name     string             `json:"name"`
	Seed     int64              `json:"seed"`
	Ticks    int                `json:"ticks"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Channels []ChannelData      `json:"channels"`
}

func NewExportData(name string, seed int64, ticks int, snap network.Snapshot, metrics map[string]float64) ExportData {
	data := ExportData{
		Name:     name,
		Seed:     seed,
		Ticks:    ticks,
		Metrics:  metrics,
		Channels: make([]ChannelData, len(snap.Channels)),
	}
	for i, c := range snap.Channels {
		cd := ChannelData{
			ID:     int(c.ID),
			Parent: int(c.Parent),
			State:  c.State.String(),
			Width:  c.Width,
			Time:   c.Time,
			Points: flatten(c.Points),
		}
		for _, id := range c.Children {
			cd.Children = append(cd.Children, int(id))
		}
		for _, l := range c.Oxbows {
			cd.Oxbows = append(cd.Oxbows, OxbowData{CutTime: l.CutTime, Points: flatten(l.Points)})
		}
		data.Channels[i] = cd
	}
	return data
}

// WriteJSON encodes any export payload with the indentation used on disk.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ExportJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, v)
}

func flatten(pts []geom.Point) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}
