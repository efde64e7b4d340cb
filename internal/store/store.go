// Package store persists the project state inside the workspace as
// versioned gob envelopes.
package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/cowan/internal/catalog"
	"github.com/wildstyl3r/cowan/internal/grid"
	"github.com/wildstyl3r/cowan/internal/synth"
)

// Version of the payloads written by this package.
//
//	1: states without element ratio, contributions, grouping and threading
//	2: current
const Version = 2

const (
	Dir      = ".cowan"
	FileName = "obj_info.gob"
)

var ErrUnknownVersion = errors.New("store: unknown payload version")

type Kind string

const (
	KindState   Kind = "state"
	KindGrid    Kind = "grid"
	KindCatalog Kind = "catalog"
)

// Envelope is one persisted object.
type Envelope struct {
	Version int
	Kind    Kind
	Payload []byte
}

// Project is everything persisted for a workspace. Absent parts are nil.
type Project struct {
	ID      string
	State   *synth.State
	Grid    *grid.Grid
	Catalog *catalog.Catalog
}

type Store struct {
	Path string
	Log  logrus.FieldLogger
}

// Open returns the store of the workspace; nothing is read yet.
func Open(workspace string) *Store {
	return &Store{Path: filepath.Join(workspace, Dir, FileName), Log: logrus.StandardLogger()}
}

func encode(kind Kind, v any) (Envelope, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return Envelope{}, fmt.Errorf("store: encoding %s: %w", kind, err)
	}
	return Envelope{Version: Version, Kind: kind, Payload: buf.Bytes()}, nil
}

// Save writes every present part of p, replacing the previous file.
func (s *Store) Save(p *Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	envelopes := []Envelope{}
	for _, part := range []struct {
		kind Kind
		v    any
		ok   bool
	}{
		{KindState, p.State, p.State != nil},
		{KindGrid, p.Grid, p.Grid != nil},
		{KindCatalog, p.Catalog, p.Catalog != nil},
	} {
		if !part.ok {
			continue
		}
		e, err := encode(part.kind, part.v)
		if err != nil {
			return err
		}
		envelopes = append(envelopes, e)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0750); err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(struct {
		ID        string
		Envelopes []Envelope
	}{p.ID, envelopes}); err != nil {
		f.Close()
		return fmt.Errorf("store: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return err
	}
	s.log().WithFields(logrus.Fields{"path": s.Path, "project": p.ID, "objects": len(envelopes)}).Info("project saved")
	return nil
}

func (s *Store) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// Load reads the project. A missing file is an empty project.
func (s *Store) Load() (*Project, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log().WithField("path", s.Path).Info("no saved project, starting empty")
		return &Project{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var file struct {
		ID        string
		Envelopes []Envelope
	}
	if err := gob.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("store: %s: %w", s.Path, err)
	}
	p := &Project{ID: file.ID}
	for _, e := range file.Envelopes {
		if err := s.decode(e, p); err != nil {
			return nil, err
		}
	}
	s.log().WithFields(logrus.Fields{"path": s.Path, "project": p.ID, "objects": len(file.Envelopes)}).Info("project loaded")
	return p, nil
}

func (s *Store) decode(e Envelope, p *Project) error {
	if e.Version < 1 || e.Version > Version {
		return fmt.Errorf("%w: %s v%d", ErrUnknownVersion, e.Kind, e.Version)
	}
	if e.Version < Version {
		s.log().WithFields(logrus.Fields{"kind": e.Kind, "version": e.Version}).Warn("migrating older object")
	}
	dec := gob.NewDecoder(bytes.NewReader(e.Payload))
	switch e.Kind {
	case KindState:
		p.State = new(synth.State)
		if err := dec.Decode(p.State); err != nil {
			return fmt.Errorf("store: %s: %w", e.Kind, err)
		}
		migrateState(p.State, e.Version)
	case KindGrid:
		p.Grid = new(grid.Grid)
		if err := dec.Decode(p.Grid); err != nil {
			return fmt.Errorf("store: %s: %w", e.Kind, err)
		}
		migrateGrid(p.Grid, e.Version)
	case KindCatalog:
		p.Catalog = catalog.New()
		if err := dec.Decode(p.Catalog); err != nil {
			return fmt.Errorf("store: %s: %w", e.Kind, err)
		}
		migrateCatalog(p.Catalog, e.Version)
	default:
		s.log().WithField("kind", e.Kind).Warn("unknown object kind skipped")
	}
	return nil
}
