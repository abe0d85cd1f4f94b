package api

import (
	"net/http"
	"strconv"

	"github.com/banshee-data/pitch.report/internal/httputil"
	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/store"
	"github.com/banshee-data/pitch.report/internal/units"
)

// activeSet reads the types parameter. Without it every category in recs
// is active; an empty value selects nothing.
func activeSet(r *http.Request, recs []pitch.PitchRecord) pitch.CategorySet {
	q := r.URL.Query()
	if !q.Has("types") {
		return pitch.NewCategorySet(pitch.Categories(recs)...)
	}
	return pitch.ParseCategorySet(q.Get("types"))
}

func filterActive(recs []pitch.PitchRecord, active pitch.CategorySet) []pitch.PitchRecord {
	out := make([]pitch.PitchRecord, 0, len(recs))
	for _, r := range recs {
		if active.Contains(r.CategoryOrUnknown()) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) gridSpec(r *http.Request) (pitch.GridSpec, error) {
	spec := s.cfg.GridSpec()
	if v := r.URL.Query().Get("cell_size"); v != "" {
		cs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return spec, invalid("invalid cell_size %q", v)
		}
		spec.CellSize = cs
	}
	return spec, nil
}

func (s *Server) intervals(r *http.Request) (int, error) {
	v := r.URL.Query().Get("intervals")
	if v == "" {
		return s.cfg.GetTrajectoryIntervals(), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid("invalid intervals %q", v)
	}
	if n > MaxIntervals {
		return 0, invalid("intervals must be at most %d", MaxIntervals)
	}
	return n, nil
}

// heatmap builds (or recalls) the spatial grid for the request.
func (s *Server) heatmap(r *http.Request) (*store.Matchup, pitch.SpatialGrid, pitch.CategorySet, error) {
	m, recs, err := s.load(r)
	if err != nil {
		return nil, pitch.SpatialGrid{}, nil, err
	}
	spec, err := s.gridSpec(r)
	if err != nil {
		return nil, pitch.SpatialGrid{}, nil, err
	}
	active := activeSet(r, recs)
	key := viewKey{
		kind:    "heatmap",
		matchup: m.ID,
		version: m.Version,
		params:  active.Key() + "|" + strconv.FormatFloat(spec.CellSize, 'g', -1, 64),
	}
	g, err := cached(s.cache, key, func() (pitch.SpatialGrid, error) {
		return pitch.BuildSpatialGridSpec(recs, active, spec), nil
	})
	return m, g, active, err
}

// velocity builds (or recalls) the histogram of the active categories.
func (s *Server) velocity(r *http.Request) (*store.Matchup, pitch.VelocityHistogram, error) {
	m, recs, err := s.load(r)
	if err != nil {
		return nil, pitch.VelocityHistogram{}, err
	}
	active := activeSet(r, recs)
	key := viewKey{kind: "velocity", matchup: m.ID, version: m.Version, params: active.Key()}
	h, err := cached(s.cache, key, func() (pitch.VelocityHistogram, error) {
		return pitch.BuildVelocityHistogram(filterActive(recs, active)), nil
	})
	return m, h, err
}

// trajectories returns one path per active record, or one per category
// built from the category means when representative=true.
func (s *Server) trajectories(r *http.Request) (*store.Matchup, []pitch.Trajectory, error) {
	m, recs, err := s.load(r)
	if err != nil {
		return nil, nil, err
	}
	n, err := s.intervals(r)
	if err != nil {
		return nil, nil, err
	}
	recs = filterActive(recs, activeSet(r, recs))
	if r.URL.Query().Get("representative") == "true" {
		arsenal := pitch.BuildArsenal(recs)
		reps := make([]pitch.PitchRecord, len(arsenal))
		for i, e := range arsenal {
			reps[i] = e.Representative()
		}
		recs = reps
	}
	trs, err := pitch.ComputeTrajectories(r.Context(), recs, n)
	return m, trs, err
}

type heatmapResponse struct {
	Matchup string            `json:"matchup"`
	Types   []string          `json:"types"`
	Grid    pitch.SpatialGrid `json:"grid"`
}

func (s *Server) showHeatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	m, g, active, err := s.heatmap(r)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, heatmapResponse{Matchup: m.ID, Types: active.Sorted(), Grid: g})
}

type velocityResponse struct {
	Matchup    string              `json:"matchup"`
	Categories []string            `json:"categories"`
	Total      int                 `json:"total"`
	Bins       []pitch.VelocityBin `json:"bins"`
}

func (s *Server) showVelocity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	m, h, err := s.velocity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bins := h.Bins
	if bins == nil {
		bins = []pitch.VelocityBin{}
	}
	httputil.WriteJSONOK(w, velocityResponse{Matchup: m.ID, Categories: h.Categories(), Total: h.Total(), Bins: bins})
}

type trajectoryResponse struct {
	Category   string       `json:"category"`
	FlightTime float64      `json:"flightTime"`
	StartDepth float64      `json:"startDepth"`
	Points     [][3]float64 `json:"points"` // lateral, vertical, depth
}

func (s *Server) showTrajectories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	_, trs, err := s.trajectories(r)
	if err != nil {
		writeError(w, err)
		return
	}
	viewer := r.URL.Query().Get("orientation") == "viewer"
	out := make([]trajectoryResponse, len(trs))
	for i, tr := range trs {
		pts := tr.Points
		if viewer {
			pts = tr.ViewerPoints()
		}
		out[i] = trajectoryResponse{
			Category:   tr.Category,
			FlightTime: tr.FlightTime,
			StartDepth: tr.StartDepth,
			Points:     make([][3]float64, len(pts)),
		}
		for j, p := range pts {
			out[i].Points[j] = [3]float64{p.X, p.Y, p.Z}
		}
	}
	httputil.WriteJSONOK(w, out)
}

func (s *Server) showMovement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	_, recs, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, pitch.BuildMovementScatter(filterActive(recs, activeSet(r, recs))))
}

type arsenalResponse struct {
	Matchup string               `json:"matchup"`
	Units   string               `json:"units"`
	Total   int                  `json:"total"`
	Entries []pitch.ArsenalEntry `json:"entries"`
}

func (s *Server) showArsenal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	u := r.URL.Query().Get("units")
	if u == "" {
		u = s.cfg.GetSpeedUnits()
	}
	if !units.IsValid(u) {
		httputil.BadRequest(w, "invalid units; must be one of: "+units.GetValidUnitsString())
		return
	}
	m, recs, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries := pitch.BuildArsenal(recs)
	for i := range entries {
		entries[i].MeanSpeed = units.ConvertSpeed(entries[i].MeanSpeed, u)
		entries[i].SpeedStdDev = units.ConvertSpeed(entries[i].SpeedStdDev, u)
		entries[i].MaxSpeed = units.ConvertSpeed(entries[i].MaxSpeed, u)
	}
	httputil.WriteJSONOK(w, arsenalResponse{Matchup: m.ID, Units: u, Total: len(recs), Entries: entries})
}
