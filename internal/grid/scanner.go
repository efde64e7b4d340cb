package grid

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/metrics"
	"github.com/wildstyl3r/cowan/internal/synth"
)

// Observer is told about every finished cell, in completion order.
type Observer interface {
	OnCellComplete(key Key, done, total int)
}

type ObserverFunc func(key Key, done, total int)

func (f ObserverFunc) OnCellComplete(key Key, done, total int) { f(key, done, total) }

type Scanner struct {
	Workers  int // defaults to NumCPU-1
	Observer Observer
	Metrics  *metrics.Collector
	Log      logrus.FieldLogger
}

func (sc *Scanner) workers() int {
	if sc.Workers > 0 {
		return sc.Workers
	}
	return max(1, runtime.NumCPU()-1)
}

func (sc *Scanner) log() logrus.FieldLogger {
	if sc.Log == nil {
		return logrus.StandardLogger()
	}
	return sc.Log
}

type cell struct {
	key   Key
	state *synth.State
	err   error
}

// compute runs one cell. Panics become errors.
func compute(base *synth.State, key Key) (c cell) {
	c.key = key
	defer func() {
		if r := recover(); r != nil {
			c.state, c.err = nil, fmt.Errorf("grid: cell %v panicked: %v", key, r)
		}
	}()
	state, err := base.At(key.Temperature, key.Density)
	if err != nil {
		c.err = err
		return
	}
	state.Strip()
	c.state = state
	return
}

// Calculate synthesizes and scores base at every grid point. base is only
// read. Failed cells are logged and left out of the grid.
func (sc *Scanner) Calculate(base *synth.State, axes Axes) *Grid {
	g := New(axes)
	keys := axes.Keys()
	log := sc.log().WithFields(logrus.Fields{"scan": g.ID, "cells": len(keys), "workers": sc.workers()})
	log.Info("scan started")
	sc.Metrics.ScanStarted()

	var computeWg sync.WaitGroup
	computeflow := make(chan Key, len(keys))
	for _, k := range keys {
		computeflow <- k
	}
	close(computeflow)

	dataflow := make(chan cell)
	for range sc.workers() {
		computeWg.Add(1)
		go func() {
			defer computeWg.Done()
			for key := range computeflow {
				timer := sc.Metrics.CellTimer()
				c := compute(base, key)
				timer.ObserveDuration()
				dataflow <- c
			}
		}()
	}

	// chan killer
	go func() {
		computeWg.Wait()
		close(dataflow)
	}()

	done, failed := 0, 0
	for c := range dataflow {
		done++
		sc.Metrics.CellDone(c.err != nil)
		if c.err != nil {
			failed++
			log.WithFields(logrus.Fields{"cell": c.key.String(), "error": c.err}).Warn("cell failed, omitted")
		} else {
			g.Cells[c.key] = c.state
			log.WithField("cell", c.key.String()).Debug("cell done")
		}
		if sc.Observer != nil {
			sc.Observer.OnCellComplete(c.key, done, len(keys))
		}
	}
	log.WithField("failed", failed).Info("scan finished")
	return g
}

// Rescore compares every cell with exp without re-broadening.
func (sc *Scanner) Rescore(g *Grid, exp *experiment.Spectrum) {
	done := 0
	for _, key := range g.Axes.Keys() {
		state, ok := g.Cells[key]
		if !ok {
			continue
		}
		state.Rescore(exp)
		done++
		if sc.Observer != nil {
			sc.Observer.OnCellComplete(key, done, len(g.Cells))
		}
	}
	sc.log().WithFields(logrus.Fields{"scan": g.ID, "cells": done}).Info("grid rescored")
}
