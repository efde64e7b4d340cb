package main

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wildstyl3r/cowan/internal/grid"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve metrics and run scans on request.",
	Long: `serve exposes prometheus metrics on /metrics, the stored grid on /grid
and starts a scan of the configured project on POST /scan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := &http.Server{
			Addr:              addr,
			Handler:           newRouter(&scanService{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logrus.WithField("addr", addr).Info("serving")
		go func() {
			<-cmd.Context().Done()
			srv.Close()
		}()
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
	DisableAutoGenTag: true,
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":9090", "listen address")
}

// scanService runs one scan at a time.
type scanService struct {
	mu      sync.Mutex
	running bool
	lastErr error
}

func (s *scanService) start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	go func() {
		err := s.scan()
		if err != nil {
			logrus.WithError(err).Error("scan failed")
		}
		s.mu.Lock()
		s.running, s.lastErr = false, err
		s.mu.Unlock()
	}()
	return true
}

func (s *scanService) scan() error {
	exp, err := loadExperiment("")
	if err != nil {
		return err
	}
	base, err := baseState(exp)
	if err != nil {
		return err
	}
	axes, err := grid.NewAxes(cfg.AxesSpec())
	if err != nil {
		return err
	}
	g := scanner(true).Calculate(base, axes)
	p, err := project.Load()
	if err != nil {
		return err
	}
	p.Grid = g
	return project.Save(p)
}

func (s *scanService) status() (running bool, lastErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr != nil {
		lastErr = s.lastErr.Error()
	}
	return s.running, lastErr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writing response")
	}
}

type gridResponse struct {
	ID          string       `json:"id"`
	Temperature []float64    `json:"temperature"`
	Density     []float64    `json:"density"`
	Similarity  [][]*float64 `json:"similarity"` // null for absent cells
	Best        *grid.Key    `json:"best,omitempty"`
}

func newRouter(scans *scanService) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(collector.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		running, lastErr := scans.status()
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "scanning": running, "error": lastErr})
	}).Methods(http.MethodGet)
	router.HandleFunc("/scan", func(w http.ResponseWriter, r *http.Request) {
		if !scans.start() {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a scan is running"})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	}).Methods(http.MethodPost)
	router.HandleFunc("/grid", func(w http.ResponseWriter, r *http.Request) {
		p, err := project.Load()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if p.Grid == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no grid"})
			return
		}
		writeJSON(w, http.StatusOK, gridJSON(p.Grid))
	}).Methods(http.MethodGet)
	return router
}

func gridJSON(g *grid.Grid) gridResponse {
	resp := gridResponse{ID: g.ID, Temperature: g.Axes.Temperature, Density: g.Axes.Density}
	for _, row := range g.Similarity() {
		values := make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				values[j] = &row[j]
			}
		}
		resp.Similarity = append(resp.Similarity, values)
	}
	if key, _, ok := g.Best(); ok {
		resp.Best = &key
	}
	return resp
}
