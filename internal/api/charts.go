package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/banshee-data/pitch.report/internal/chart"
	"github.com/banshee-data/pitch.report/internal/httputil"
	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/store"
)

func title(m *store.Matchup) string {
	switch {
	case m.Pitcher != "" && m.Batter != "":
		return fmt.Sprintf("%s vs %s", m.Pitcher, m.Batter)
	case m.Pitcher != "":
		return m.Pitcher
	default:
		return "Matchup " + m.ID
	}
}

func subtitle(m *store.Matchup, active pitch.CategorySet) string {
	return fmt.Sprintf("%s (%s)", title(m), strings.Join(active.Sorted(), ", "))
}

func (s *Server) velocityChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	m, h, err := s.velocity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := chart.RenderPage(title(m), chart.VelocityChart(h, fmt.Sprintf("%s, %d pitches", title(m), h.Total())))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteHTML(w, page)
}

func (s *Server) heatmapChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	m, g, active, err := s.heatmap(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := chart.RenderPage(title(m), chart.HeatmapChart(g, subtitle(m, active)))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteHTML(w, page)
}

func (s *Server) movementChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	m, recs, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	active := activeSet(r, recs)
	points := pitch.BuildMovementScatter(filterActive(recs, active))
	page, err := chart.RenderPage(title(m), chart.MovementChart(points, subtitle(m, active)))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteHTML(w, page)
}

func (s *Server) heatmapPlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	m, g, active, err := s.heatmap(r)
	if err != nil {
		writeError(w, err)
		return
	}
	img, err := chart.HeatmapPNG(g, subtitle(m, active))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WritePNG(w, img)
}

func (s *Server) trajectoryPlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	view, err := chart.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, invalid("%v", err))
		return
	}
	m, trs, err := s.trajectories(r)
	if err != nil {
		writeError(w, err)
		return
	}
	img, err := chart.TrajectoryPNG(trs, view, title(m))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WritePNG(w, img)
}
