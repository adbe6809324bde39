// Package store persists what outlives a single game: the per-player stats
// history as CSV and a parquet archive of every finished game.
package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
)

// GameRecord is one line of the stats history.
type GameRecord struct {
	GameID     string `csv:"game_id"`
	Variant    string `csv:"variant"`
	Reason     string `csv:"reason"`
	Score      int    `csv:"score"`
	Generation int    `csv:"generation"`
	Total      int    `csv:"total"`
	EndedUnix  int64  `csv:"ended_unix_ms"`
}

func RecordFromResult(res engine.Result) GameRecord {
	return GameRecord{
		GameID:     res.GameID,
		Variant:    res.Variant,
		Reason:     res.Reason.String(),
		Score:      res.Score,
		Generation: res.Generation,
		Total:      res.Total,
		EndedUnix:  res.EndedAt.UnixMilli(),
	}
}

func (r GameRecord) EndedAt() time.Time { return time.UnixMilli(r.EndedUnix) }

// Stats is what the game shows between rounds. Scores are totals (points
// plus generations survived).
type Stats struct {
	Played int `json:"played"`
	Best   int `json:"best"`
	Last   int `json:"last"`
}

// StatsStore appends finished games to a CSV file. It is an engine.Observer.
type StatsStore struct {
	path string
	log  *slog.Logger

	mu sync.Mutex
}

func NewStatsStore(path string, log *slog.Logger) *StatsStore {
	if log == nil {
		log = slog.Default()
	}
	return &StatsStore{path: path, log: log}
}

// Append writes rec, adding the header when the file is new.
func (s *StatsStore) Append(rec GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open stats: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat stats: %w", err)
	}

	records := []GameRecord{rec}
	if st.Size() == 0 {
		err = gocsv.Marshal(records, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(records, f)
	}
	if err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}

// Records reads the whole history. A missing or empty file is an empty
// history.
func (s *StatsStore) Records() ([]GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open stats: %w", err)
	}
	defer f.Close()
	return readRecords(f)
}

func readRecords(r io.Reader) ([]GameRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []GameRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("parse stats: %w", err)
	}
	return records, nil
}

func (s *StatsStore) Stats() (Stats, error) {
	records, err := s.Records()
	if err != nil {
		return Stats{}, err
	}
	return StatsOf(records), nil
}

// StatsOf folds a history in file order.
func StatsOf(records []GameRecord) Stats {
	var st Stats
	for _, r := range records {
		st.Played++
		st.Last = r.Total
		if r.Total > st.Best {
			st.Best = r.Total
		}
	}
	return st
}

func (s *StatsStore) Frame(game.Snapshot) {}
func (s *StatsStore) Notice(string)       {}

func (s *StatsStore) GameOver(res engine.Result) {
	if err := s.Append(RecordFromResult(res)); err != nil {
		s.log.Error("failed to record game", "game_id", res.GameID, "error", err)
		return
	}
	s.log.Debug("recorded game", "game_id", res.GameID, "total", res.Total)
}

// Summary describes a history in aggregate.
type Summary struct {
	Games          int            `json:"games"`
	Best           int            `json:"best"`
	MeanTotal      float64        `json:"mean_total"`
	StdDevTotal    float64        `json:"stddev_total"`
	MedianTotal    float64        `json:"median_total"`
	MeanGeneration float64        `json:"mean_generation"`
	ByReason       map[string]int `json:"by_reason"`
	ByVariant      map[string]int `json:"by_variant"`
}

func Summarize(records []GameRecord) Summary {
	sum := Summary{
		Games:     len(records),
		ByReason:  map[string]int{},
		ByVariant: map[string]int{},
	}
	if len(records) == 0 {
		return sum
	}

	totals := make([]float64, len(records))
	gens := make([]float64, len(records))
	for i, r := range records {
		totals[i] = float64(r.Total)
		gens[i] = float64(r.Generation)
		sum.ByReason[r.Reason]++
		sum.ByVariant[r.Variant]++
		if r.Total > sum.Best {
			sum.Best = r.Total
		}
	}

	sum.MeanTotal = stat.Mean(totals, nil)
	if len(totals) > 1 {
		sum.StdDevTotal = stat.StdDev(totals, nil)
	}
	sum.MeanGeneration = stat.Mean(gens, nil)

	sort.Float64s(totals)
	sum.MedianTotal = stat.Quantile(0.5, stat.Empirical, totals, nil)
	return sum
}
