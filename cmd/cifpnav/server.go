// cmd/cifpnav/server.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/nav"
	"github.com/cifpnav/cifpnav/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server provides guidance over HTTP: a client selects an approach at an
// airport, posts position reports and gets back the guidance and the
// route to draw. There is one navigation session per airport.
type Server struct {
	store  *Store
	tuning nav.Tuning
	lg     *log.Logger

	mu       sync.Mutex
	sessions map[string]*nav.Navigator
}

func NewServer(store *Store, tun nav.Tuning, lg *log.Logger) *Server {
	return &Server{
		store:    store,
		tuning:   tun,
		lg:       lg,
		sessions: make(map[string]*nav.Navigator),
	}
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(s.logRequests)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(router chi.Router) {
		router.Get("/airports", s.getAirports)
		router.Route("/airports/{airport}", func(router chi.Router) {
			router.Get("/approaches", s.getApproaches)
			router.Get("/choices", s.getChoices)
			router.Post("/select", s.postSelect)
			router.Post("/decide", s.postDecide)
			router.Post("/position", s.postPosition)
			router.Get("/frame", s.getFrame)
			router.Delete("/route", s.deleteRoute)
		})
	})
	return router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.lg.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		}()

		next.ServeHTTP(ww, r)
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, av.ErrUnknownAirport), errors.Is(err, nav.ErrUnknownApproach),
		errors.Is(err, nav.ErrUnknownTransition):
		status = http.StatusNotFound
	case errors.Is(err, nav.ErrNoApproach), errors.Is(err, nav.ErrSuspended), errors.Is(err, nav.ErrNoPendingDecision):
		status = http.StatusConflict
	}
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}

// session returns the airport's navigator, loading its approaches the
// first time.
func (s *Server) session(r *http.Request) (*nav.Navigator, error) {
	airport := chi.URLParam(r, "airport")

	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.sessions[airport]; ok {
		return n, nil
	}
	aps, e, err := s.store.LoadAirport(r.Context(), airport)
	if err != nil {
		return nil, err
	}
	if e.HaveErrors() {
		s.lg.Warn("approach errors", "airport", airport, "errors", e.Errors())
	}
	n := nav.NewNavigator(aps, s.tuning, s.lg.With("airport", airport))
	s.sessions[airport] = n
	return n, nil
}

func (s *Server) getAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := s.store.Airports(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, airports)
}

func (s *Server) getApproaches(w http.ResponseWriter, r *http.Request) {
	n, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := ApproachesJSON(chi.URLParam(r, "airport"), n.Approaches())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

type choiceJSON struct {
	Label      string     `json:"label"`
	Approach   string     `json:"approach"`
	Transition string     `json:"transition"`
	Location   [2]float32 `json:"location"` // nm from the airport
}

func (s *Server) getChoices(w http.ResponseWriter, r *http.Request) {
	n, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	proj, err := s.store.Projector(chi.URLParam(r, "airport"))
	if err != nil {
		writeError(w, err)
		return
	}

	choices := []choiceJSON{}
	for _, c := range n.Choices(proj) {
		choices = append(choices, choiceJSON{Label: c.Label, Approach: c.Approach, Transition: c.Transition,
			Location: c.Location})
	}
	WriteJSON(w, http.StatusOK, choices)
}

type requestJSON struct {
	Key  string `json:"key"`
	Leg  string `json:"leg"`
	Text string `json:"text"`
}

// writeSelection reports the outcome of Select or Decide: either the next
// question to answer or that the route is installed.
func writeSelection(w http.ResponseWriter, n *nav.Navigator, req *nav.DecisionRequest, err error) {
	if err != nil {
		writeError(w, err)
	} else if req != nil {
		WriteJSON(w, http.StatusAccepted, map[string]any{
			"request": requestJSON{Key: req.Key, Leg: req.Leg.Raw, Text: req.Text},
		})
	} else {
		r := n.Route()
		WriteJSON(w, http.StatusOK, map[string]any{
			"approach":   r.Approach.Id,
			"transition": r.Transition,
			"steps":      len(r.Steps),
		})
	}
}

func (s *Server) postSelect(w http.ResponseWriter, r *http.Request) {
	n, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var sel struct {
		Approach   string `json:"approach"`
		Transition string `json:"transition"`
	}
	if err := util.UnmarshalJSON(r.Body, &sel); err != nil {
		writeError(w, err)
		return
	}
	req, err := n.Select(sel.Approach, sel.Transition)
	writeSelection(w, n, req, err)
}

func (s *Server) postDecide(w http.ResponseWriter, r *http.Request) {
	n, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var d struct {
		Fly bool `json:"fly"`
	}
	if err := util.UnmarshalJSON(r.Body, &d); err != nil {
		writeError(w, err)
		return
	}
	req, err := n.Decide(d.Fly)
	writeSelection(w, n, req, err)
}

func (s *Server) postPosition(w http.ResponseWriter, r *http.Request) {
	n, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var sample av.PositionSample
	if err := util.UnmarshalJSON(r.Body, &sample); err != nil {
		writeError(w, err)
		return
	}
	f, err := n.Update(sample)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, makeFrameJSON(n.Route(), f))
}

func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	n, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	f, ok := n.Snapshot()
	if !ok {
		writeError(w, nav.ErrNoApproach)
		return
	}
	WriteJSON(w, http.StatusOK, makeFrameJSON(n.Route(), f))
}

func (s *Server) deleteRoute(w http.ResponseWriter, r *http.Request) {
	n, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	n.Discontinue()
	w.WriteHeader(http.StatusNoContent)
}

// frameJSON is a Frame in a form that can be encoded: the draw list's
// arcs are marked with NaNs, which JSON can't represent, so lines and
// arcs are given separately.
type frameJSON struct {
	Time     time.Time `json:"time"`
	Step     int       `json:"step"`
	StepText string    `json:"step_text,omitempty"`

	Mode             string  `json:"mode"`
	Deviation        float32 `json:"deviation_nm"`
	Needle           float32 `json:"needle"`
	Glideslope       float32 `json:"glideslope_deg"`
	GlideslopeNeedle float32 `json:"glideslope_needle"`
	Distance         float32 `json:"distance_nm,omitempty"`
	Behind           bool    `json:"behind"`
	Status           string  `json:"status"`

	Lines [][4]float32 `json:"lines"`
	Arcs  [][5]float32 `json:"arcs"` // center x, y, radius, start, sweep
}

func makeFrameJSON(r *nav.Route, f nav.Frame) frameJSON {
	g := f.Guidance
	fj := frameJSON{
		Time:             f.Time,
		Step:             f.Current,
		Mode:             g.Mode.String(),
		Deviation:        g.Deviation,
		Needle:           g.Needle,
		Glideslope:       g.Glideslope,
		GlideslopeNeedle: g.GlideslopeNeedle,
		Behind:           g.Behind,
		Status:           g.Status,
		Lines:            [][4]float32{},
		Arcs:             [][5]float32{},
	}
	if g.HaveDistance {
		fj.Distance = g.DistanceToFix
	}
	if r != nil && f.Current >= 0 && f.Current < len(r.Steps) {
		fj.StepText = r.Steps[f.Current].Text()
	}
	f.Draw.Visit(func(_ int, p0, p1 [2]float32) {
		fj.Lines = append(fj.Lines, [4]float32{p0[0], p0[1], p1[0], p1[1]})
	}, func(_ int, c [2]float32, radius, start, sweep float32) {
		fj.Arcs = append(fj.Arcs, [5]float32{c[0], c[1], radius, start, sweep})
	})
	return fj
}
