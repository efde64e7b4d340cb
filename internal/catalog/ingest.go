package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/synth"
	"github.com/wildstyl3r/cowan/internal/utils"
)

// ParseStem reads "<x>mm_<t>ns" into a key. ok is false when the stem has
// no "_" separator.
func ParseStem(stem string) (key Key, ok bool) {
	position, time, found := strings.Cut(stem, "_")
	if !found {
		return Key{}, false
	}
	key.Time = strings.TrimSuffix(time, "ns")
	key.Position = [3]string{strings.TrimSuffix(position, "mm"), "0", "0"}
	return key, true
}

// Diagnose turns one measured spectrum into a plasma state, typically the
// best cell of a grid scan.
type Diagnose func(exp *experiment.Spectrum) (*synth.State, error)

type Ingester struct {
	Catalog  *Catalog
	Diagnose Diagnose
	Log      logrus.FieldLogger
}

// Keys assigns a key to every path from its file stem. Stems without a
// separator get unique negative tags -1, -2, ...
func Keys(paths []string) []Key {
	keys := make([]Key, len(paths))
	synthetic := 0
	for i, path := range paths {
		key, ok := ParseStem(utils.GetFilename(path))
		if !ok {
			synthetic++
			tag := strconv.Itoa(-synthetic)
			key = Key{Time: tag, Position: [3]string{tag, "0", "0"}}
		}
		keys[i] = key
	}
	return keys
}

// Ingest loads, diagnoses and stores every file. It stops at the first
// error; entries added before it are kept.
func (in *Ingester) Ingest(paths []string) error {
	log := in.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	for i, key := range Keys(paths) {
		exp, err := experiment.Load(paths[i])
		if err != nil {
			return err
		}
		state, err := in.Diagnose(exp)
		if err != nil {
			return fmt.Errorf("catalog: %s: %w", paths[i], err)
		}
		in.Catalog.Add(key, state)
		log.WithFields(logrus.Fields{
			"file":        paths[i],
			"time":        key.Time,
			"position":    key.Position[0],
			"temperature": state.Temperature,
			"density":     state.Density,
		}).Info("recording ingested")
	}
	return nil
}

// WriteSeries exports points as CSV under dir/subpath, in tag order.
func WriteSeries(points []Point, dir, subpath, filename string) error {
	data := make(utils.CSV, len(points))
	for i, p := range points {
		data[i] = []string{
			p.Tag,
			strconv.FormatFloat(p.Temperature, 'g', -1, 64),
			strconv.FormatFloat(p.Density, 'g', -1, 64),
			strconv.FormatFloat(p.Similarity, 'g', -1, 64),
		}
	}
	data.SortBy(CompareTags)
	return utils.WriteAsCSV(data, dir, subpath, filename, []string{"tag", "T [eV]", "ne [cm^-3]", "similarity"})
}
