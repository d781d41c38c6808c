package storage

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/config"
	"github.com/san-kum/trajgen/internal/traj"
)

func testBatch() *traj.Batch {
	return &traj.Batch{
		Times: []float64{0, 0.1, 0.2},
		States: []*mat.Dense{
			mat.NewDense(3, 4, []float64{
				0, 0, 1, 0,
				0.1, 0, 1, 0,
				0.2, 0, 1, 0,
			}),
			mat.NewDense(3, 4, []float64{
				1, 1, 0, -1,
				1, 0.9, 0, -1,
				1, 0.8, 0, -1,
			}),
		},
		Inputs: []*mat.Dense{
			mat.NewDense(3, 2, []float64{0, 0, 0.5, 0, -0.5, 0}),
			mat.NewDense(3, 2, []float64{0, 1, 0, 0, 0, -1}),
		},
		Waypoints: []*mat.Dense{
			mat.NewDense(2, 2, []float64{0, 0, 1, 1}),
			mat.NewDense(2, 2, []float64{-1, 0, 0, 2}),
		},
		Errors: []error{errors.New("trajectory 2: infeasible")},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	batch := testBatch()
	mets := map[string]float64{"control_effort": 1.5}

	runID, err := st.Save(cfg, batch, mets)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("meta ID = %s, want %s", meta.ID, runID)
	}
	if meta.NTrajectories != 2 || meta.Steps != 3 || meta.Failed != 1 {
		t.Errorf("meta counts = (%d, %d, %d), want (2, 3, 1)",
			meta.NTrajectories, meta.Steps, meta.Failed)
	}
	if meta.Metrics["control_effort"] != 1.5 {
		t.Errorf("metrics not round-tripped: %v", meta.Metrics)
	}
	if meta.Config.TimeStep != cfg.TimeStep {
		t.Errorf("config snapshot not round-tripped")
	}

	states, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	inputs, err := st.LoadInputs(runID)
	if err != nil {
		t.Fatalf("load inputs failed: %v", err)
	}
	waypoints, err := st.LoadWaypoints(runID)
	if err != nil {
		t.Fatalf("load waypoints failed: %v", err)
	}

	if len(states) != 2 || len(inputs) != 2 || len(waypoints) != 2 {
		t.Fatalf("expected 2 of each, got %d states %d inputs %d waypoints",
			len(states), len(inputs), len(waypoints))
	}
	for i := range states {
		if !mat.EqualApprox(states[i], batch.States[i], 1e-12) {
			t.Errorf("states[%d] not round-tripped", i)
		}
		if !mat.EqualApprox(inputs[i], batch.Inputs[i], 1e-12) {
			t.Errorf("inputs[%d] not round-tripped", i)
		}
		if !mat.EqualApprox(waypoints[i], batch.Waypoints[i], 1e-12) {
			t.Errorf("waypoints[%d] not round-tripped", i)
		}
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty store, got %d runs", len(runs))
	}

	runID, err := st.Save(config.DefaultConfig(), testBatch(), nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("expected run %s listed, got %+v", runID, runs)
	}
}

func TestListMissingDir(t *testing.T) {
	st := New(t.TempDir() + "/does-not-exist")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir should not error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("gen_0"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadStates("gen_0"); err == nil {
		t.Error("expected error for missing states")
	}
}
