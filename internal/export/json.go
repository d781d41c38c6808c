package export

import (
	"encoding/json"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/storage"
)

type RunData struct {
	Meta      storage.RunMetadata `json:"meta"`
	Times     []float64           `json:"times"`
	States    [][][]float64       `json:"states"`
	Inputs    [][][]float64       `json:"inputs"`
	Waypoints [][][]float64       `json:"waypoints"`
}

// WriteJSON emits one JSON document with everything a run persisted.
func WriteJSON(w io.Writer, meta *storage.RunMetadata, times []float64, states, inputs, waypoints []*mat.Dense) error {
	data := RunData{
		Meta:      *meta,
		Times:     times,
		States:    toRows(states),
		Inputs:    toRows(inputs),
		Waypoints: toRows(waypoints),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func WriteJSONFile(path string, meta *storage.RunMetadata, times []float64, states, inputs, waypoints []*mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, meta, times, states, inputs, waypoints)
}

func toRows(ms []*mat.Dense) [][][]float64 {
	out := make([][][]float64, len(ms))
	for i, m := range ms {
		rows, _ := m.Dims()
		out[i] = make([][]float64, rows)
		for r := 0; r < rows; r++ {
			out[i][r] = mat.Row(nil, r, m)
		}
	}
	return out
}
