// Command conpac-archive inspects the stats history and parquet archives, and
// can fill them with headless games played by a simple bot.
//
//	conpac-archive summary  -stats data/stats.csv -archive-dir data/archive
//	conpac-archive show     -file data/archive/<id>.parquet -seq 10
//	conpac-archive simulate -games 20 -variant rush -archive-dir data/archive
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/brensch/conpac/config"
	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/logging"
	"github.com/brensch/conpac/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "summary":
		err = runSummary(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	case "simulate":
		err = runSimulate(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "conpac-archive:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: conpac-archive summary|show|simulate [flags]")
}

func runSummary(args []string) error {
	flags := flag.NewFlagSet("summary", flag.ExitOnError)
	statsPath := flags.String("stats", getEnvOrDefault("CONPAC_STATS", "data/stats.csv"), "Stats history CSV")
	archiveDir := flags.String("archive-dir", getEnvOrDefault("CONPAC_ARCHIVE_DIR", "data/archive"), "Parquet archive directory")
	asJSON := flags.Bool("json", false, "Print the summary as JSON")
	_ = flags.Parse(args)

	records, err := store.NewStatsStore(*statsPath, nil).Records()
	if err != nil {
		return err
	}
	sum := store.Summarize(records)

	archives, err := findArchives(*archiveDir)
	if err != nil {
		return err
	}
	infos := inspectAll(archives)
	sort.Slice(infos, func(i, j int) bool { return infos[i].Score+infos[i].Generation > infos[j].Score+infos[j].Generation })

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Stats    store.Summary       `json:"stats"`
			Archives []store.ArchiveInfo `json:"archives"`
		}{sum, infos})
	}

	st := store.StatsOf(records)
	fmt.Printf("Games played:   %d\n", st.Played)
	fmt.Printf("Best total:     %d\n", st.Best)
	fmt.Printf("Last total:     %d\n", st.Last)
	fmt.Printf("Mean total:     %.1f (sd %.1f, median %.1f)\n", sum.MeanTotal, sum.StdDevTotal, sum.MedianTotal)
	fmt.Printf("Mean survival:  %.1f generations\n", sum.MeanGeneration)
	for _, k := range sortedKeys(sum.ByReason) {
		fmt.Printf("  %-12s %d\n", k, sum.ByReason[k])
	}

	fmt.Printf("\nArchived games: %d\n", len(infos))
	for i, info := range infos {
		if i == 10 {
			fmt.Printf("  ... %d more\n", len(infos)-10)
			break
		}
		fmt.Printf("  %s  %-8s %-12s total %5d  frames %d\n",
			info.GameID, info.Variant, info.Reason, info.Score+info.Generation, info.Rows)
	}
	return nil
}

func runShow(args []string) error {
	flags := flag.NewFlagSet("show", flag.ExitOnError)
	file := flags.String("file", "", "Archive parquet file")
	seq := flags.Int("seq", -1, "Frame to print (-1 = last)")
	_ = flags.Parse(args)

	if *file == "" {
		return fmt.Errorf("-file is required")
	}
	rows, err := store.ReadArchive(*file)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s has no frames", *file)
	}
	i := *seq
	if i < 0 || i >= len(rows) {
		i = len(rows) - 1
	}
	fmt.Print(drawRow(rows[i]))
	return nil
}

// drawRow prints a frame: P player, G ghost, # live, o item.
func drawRow(r store.TurnRow) string {
	size := int(r.Size)
	cells := make([][]byte, size)
	for y := range cells {
		cells[y] = []byte(strings.Repeat(".", size))
	}
	put := func(x, y int32, c byte) {
		if x >= 0 && y >= 0 && int(x) < size && int(y) < size {
			cells[y][x] = c
		}
	}
	for i := range r.ItemX {
		put(r.ItemX[i], r.ItemY[i], 'o')
	}
	for i := range r.LiveX {
		put(r.LiveX[i], r.LiveY[i], '#')
	}
	put(r.PlayerX, r.PlayerY, 'P')
	for i := range r.GhostX {
		put(r.GhostX[i], r.GhostY[i], 'G')
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s seq=%d gen=%d state=%s score=%d total=%d alive=%v\n",
		r.GameID, r.Seq, r.Generation, r.State, r.Score, r.Total, r.PlayerAlive)
	for _, line := range cells {
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func runSimulate(args []string) error {
	flags := flag.NewFlagSet("simulate", flag.ExitOnError)
	configPath := flags.String("config", getEnvOrDefault("CONPAC_CONFIG", ""), "YAML file overriding or adding variants")
	variant := flags.String("variant", getEnvOrDefault("CONPAC_VARIANT", ""), "Game variant")
	games := flags.Int("games", 10, "Number of games to play")
	maxGen := flags.Int("max-generations", 2000, "Stop a game that survives this long")
	seed := flags.Int64("seed", 1, "Seed for the first game; later games use seed+i")
	statsPath := flags.String("stats", "", "Append results to this stats CSV")
	archiveDir := flags.String("archive-dir", "", "Archive each game as parquet here")
	logLevel := flags.String("log-level", "warn", "debug, info, warn or error")
	_ = flags.Parse(args)

	lvl, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, logging.Options{Format: logging.FormatPretty, Level: lvl})
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, *variant)
	if err != nil {
		return err
	}

	var observers engine.Observers
	if *statsPath != "" {
		observers = append(observers, store.NewStatsStore(*statsPath, logger))
	}
	if *archiveDir != "" {
		archiver := store.NewArchiver(*archiveDir, logger)
		defer archiver.Close()
		observers = append(observers, archiver)
	}

	results := make([]engine.Result, 0, *games)
	for i := 0; i < *games; i++ {
		res, finished := simulate(cfg, *seed+int64(i), *maxGen, observers, logger)
		if !finished {
			fmt.Printf("game %d: still alive after %d generations\n", i+1, *maxGen)
			continue
		}
		results = append(results, res)
		fmt.Printf("game %d: %-12s total %5d (score %d, gen %d)\n", i+1, res.Reason, res.Total, res.Score, res.Generation)
	}

	records := make([]store.GameRecord, len(results))
	for i, res := range results {
		records[i] = store.RecordFromResult(res)
	}
	sum := store.Summarize(records)
	fmt.Printf("\n%d finished, mean total %.1f (sd %.1f), best %d\n", sum.Games, sum.MeanTotal, sum.StdDevTotal, sum.Best)
	return nil
}

// simulate plays one headless game: one bot move, then one tick, until the
// game ends or maxGen generations pass.
func simulate(cfg game.Config, seed int64, maxGen int, observers engine.Observers, log *slog.Logger) (engine.Result, bool) {
	e := engine.New(engine.Options{
		Config:   cfg,
		Rand:     game.NewRand(seed),
		Observer: observers,
		Logger:   log,
	})
	e.Start()
	for e.State() == engine.StateRunning && e.Session().Generation < maxGen {
		e.Move(greedyMove(e.Session()))
		e.Tick()
	}
	return e.Result()
}

// inspectAll reads archive footers concurrently. Unreadable files are
// reported and skipped.
func inspectAll(paths []string) []store.ArchiveInfo {
	var (
		eg      errgroup.Group
		results = make([]store.ArchiveInfo, len(paths))
		ok      = make([]bool, len(paths))
	)
	eg.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			info, err := store.InspectArchive(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
				return nil
			}
			results[i], ok[i] = info, true
			return nil
		})
	}
	_ = eg.Wait()

	infos := make([]store.ArchiveInfo, 0, len(paths))
	for i, info := range results {
		if ok[i] {
			infos = append(infos, info)
		}
	}
	return infos
}

// findArchives lists parquet files under dir, skipping tmp/.
func findArchives(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == "tmp" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".parquet") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk archives: %w", err)
	}
	return paths, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
