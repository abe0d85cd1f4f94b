package api

import (
	"net/http"

	"github.com/banshee-data/pitch.report/internal/httputil"
	"github.com/banshee-data/pitch.report/internal/ingest"
	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/store"
)

func (s *Server) handleMatchups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listMatchups(w, r)
	case http.MethodPost:
		s.uploadPitches(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) listMatchups(w http.ResponseWriter, r *http.Request) {
	ms, err := s.db.Matchups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, ms)
}

type uploadResponse struct {
	Matchup     *store.Matchup `json:"matchup"`
	Imported    int            `json:"imported"`
	MissingVals int            `json:"missingValues"`
}

// uploadPitches reads a CSV body into a new matchup, or appends it to
// the matchup named by the matchup query parameter.
func (s *Server) uploadPitches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	recs, stats, err := ingest.Read(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		writeError(w, err)
		return
	}

	id := q.Get("matchup")
	if id == "" {
		m, err := s.db.CreateMatchup(ctx, q.Get("pitcher"), q.Get("batter"))
		if err != nil {
			writeError(w, err)
			return
		}
		id = m.ID
	}
	if _, err := s.db.AppendPitches(ctx, id, recs); err != nil {
		writeError(w, err)
		return
	}
	m, err := s.db.Matchup(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, uploadResponse{Matchup: m, Imported: stats.Rows, MissingVals: stats.MissingVals})
}

func (s *Server) listPitches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	_, recs, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("resolved") == "true" {
		out := make([]pitch.ResolvedPitch, len(recs))
		for i, rec := range recs {
			out[i] = rec.Resolve()
		}
		httputil.WriteJSONOK(w, out)
		return
	}
	httputil.WriteJSONOK(w, recs)
}

// load fetches the matchup named by the matchup query parameter and its
// pitches, served from the view cache when the version is unchanged.
func (s *Server) load(r *http.Request) (*store.Matchup, []pitch.PitchRecord, error) {
	id := r.URL.Query().Get("matchup")
	if id == "" {
		return nil, nil, invalid("matchup parameter is required")
	}
	m, err := s.db.Matchup(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	recs, err := cached(s.cache, viewKey{kind: "pitches", matchup: m.ID, version: m.Version}, func() ([]pitch.PitchRecord, error) {
		return s.db.Pitches(r.Context(), m.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	return m, recs, nil
}
