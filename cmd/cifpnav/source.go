// cmd/cifpnav/source.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/nav"
	"github.com/cifpnav/cifpnav/util"
)

const bundleSuffix = ".msgpack.zst"

// Store is where procedures come from: the sqlite database or, if the
// configuration names one, a read-only bundle. Waypoint lookups go
// through an LRU cache.
type Store struct {
	src    av.ProcedureSource
	db     *av.ProcedureDB
	finder *av.CachingFinder
	lg     *log.Logger
}

func OpenStore(config *Config, lg *log.Logger) (*Store, error) {
	s := &Store{lg: lg}
	if config.Bundle != "" {
		ds, err := av.LoadBundle(config.Bundle)
		if err != nil {
			return nil, err
		}
		s.src = ds
	} else {
		db, err := av.OpenProcedureDB(config.Database, lg)
		if err != nil {
			return nil, err
		}
		s.src, s.db = db, db
	}

	var err error
	if s.finder, err = av.NewCachingFinder(s.src, max(1, config.WaypointCacheSize)); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		if hits, misses := s.finder.Stats(); hits+misses > 0 {
			s.lg.Info("waypoint cache", "hits", hits, "misses", misses)
		}
		return s.db.Close()
	}
	return nil
}

// Import reads the given text files and bundles and stores their
// contents in the database. Nothing is stored if any of them has
// errors.
func (s *Store) Import(ctx context.Context, paths []string, e *util.ErrorLogger) error {
	if s.db == nil {
		return fmt.Errorf("can't import into a bundle")
	}

	ds := av.NewDataset()
	for _, path := range paths {
		e.Push(path)
		if d, err := s.readDataset(path, e); err != nil {
			e.Error(err)
		} else {
			ds.Merge(d)
		}
		e.Pop()
	}
	if e.HaveErrors() {
		return fmt.Errorf("not importing due to errors")
	}
	return s.db.Import(ctx, ds)
}

// readDataset reads a bundle, an ARINC 424 file such as the FAA CIFP,
// or a file in the text format.
func (s *Store) readDataset(path string, e *util.ErrorLogger) (*av.Dataset, error) {
	if strings.HasSuffix(path, bundleSuffix) {
		return av.LoadBundle(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if first, _ := br.Peek(arinc424PeekLength); av.IsARINC424(firstLine(first)) {
		res, pe := av.ParseARINC424(br)
		e.Merge(pe)
		for _, sk := range res.Skipped {
			s.lg.Info("skipped procedure", "file", path, "reason", sk)
		}
		s.lg.Infof("%s: %d procedure segments, %d waypoints, %d skipped", path, len(res.Dataset.Procedures),
			len(res.Dataset.Waypoints), len(res.Skipped))
		return res.Dataset, nil
	}

	ds, pe := av.ParseDataset(br)
	e.Merge(pe)
	return ds, nil
}

// Long enough to hold the first ARINC 424 record and its line ending.
const arinc424PeekLength = av.ARINC424LineLength + 2

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i != -1 {
		return b[:i+1]
	}
	return b
}

// Export writes everything in the store to a bundle.
func (s *Store) Export(ctx context.Context, path string) error {
	var ds *av.Dataset
	if s.db != nil {
		var err error
		if ds, err = s.db.Export(ctx); err != nil {
			return err
		}
	} else {
		ds = s.src.(*av.Dataset)
	}
	if !strings.HasSuffix(path, bundleSuffix) {
		s.lg.Warnf("%s: bundle files are expected to end with %s", path, bundleSuffix)
	}
	return av.SaveBundle(path, ds)
}

func (s *Store) Airports(ctx context.Context) ([]string, error) {
	return s.src.Airports(ctx)
}

// LoadAirport returns the approaches at the airport that could be
// parsed along with the errors for the ones that couldn't.
func (s *Store) LoadAirport(ctx context.Context, airport string) ([]*nav.Approach, *util.ErrorLogger, error) {
	recs, err := s.src.Records(ctx, airport)
	if err != nil {
		return nil, nil, err
	}
	aps, e := nav.ParseApproaches(airport, recs, s.finder, s.lg)
	return aps, e, nil
}

// Projector returns the projection centered at the airport.
func (s *Store) Projector(airport string) (av.LocalProjector, error) {
	wp, ok := s.finder.FindWaypoint(airport)
	if !ok {
		return av.LocalProjector{}, &av.WaypointNotFoundError{Ident: airport}
	}
	return av.NewLocalProjector(wp.Location), nil
}
