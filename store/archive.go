package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
)

const archiveSchema = "conpac_turn_v1"

// TurnRow is one published frame of a game. Live cells, ghosts and
// uncollected items are stored as parallel coordinate lists.
type TurnRow struct {
	GameID     string `parquet:"game_id,dict"`
	Seq        int32  `parquet:"seq"`
	State      string `parquet:"state,dict"`
	Generation int32  `parquet:"generation"`
	Size       int32  `parquet:"size"`

	LiveX []int32 `parquet:"live_x"`
	LiveY []int32 `parquet:"live_y"`

	PlayerX     int32 `parquet:"player_x"`
	PlayerY     int32 `parquet:"player_y"`
	PlayerAlive bool  `parquet:"player_alive"`

	GhostX []int32 `parquet:"ghost_x"`
	GhostY []int32 `parquet:"ghost_y"`

	ItemX []int32 `parquet:"item_x"`
	ItemY []int32 `parquet:"item_y"`

	Score int32 `parquet:"score"`
	Total int32 `parquet:"total"`
}

// RowFromSnapshot flattens a frame into an archive row.
func RowFromSnapshot(seq int, snap game.Snapshot) TurnRow {
	row := TurnRow{
		GameID:      snap.GameID,
		Seq:         int32(seq),
		State:       snap.State,
		Generation:  int32(snap.Generation),
		Size:        int32(snap.Size),
		PlayerX:     int32(snap.Player.Pos.X),
		PlayerY:     int32(snap.Player.Pos.Y),
		PlayerAlive: snap.Player.Alive,
		Score:       int32(snap.Score),
		Total:       int32(snap.Total),
	}
	for y, line := range snap.Rows {
		for x := 0; x < len(line); x++ {
			if line[x] == '#' {
				row.LiveX = append(row.LiveX, int32(x))
				row.LiveY = append(row.LiveY, int32(y))
			}
		}
	}
	for _, g := range snap.Ghosts {
		row.GhostX = append(row.GhostX, int32(g.Pos.X))
		row.GhostY = append(row.GhostY, int32(g.Pos.Y))
	}
	for _, p := range snap.Collectibles {
		row.ItemX = append(row.ItemX, int32(p.X))
		row.ItemY = append(row.ItemY, int32(p.Y))
	}
	return row
}

// GameWriter streams the rows of one game into dir/tmp and moves the file to
// dir/<game_id>.parquet on Finalize.
type GameWriter struct {
	gameID  string
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[TurnRow]
	rows   int
}

func NewGameWriter(dir, gameID string) (*GameWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive dir is required")
	}
	tmpDir := filepath.Join(dir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := gameID + ".parquet"
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[TurnRow](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", archiveSchema)
	w.SetKeyValueMetadata("game_id", gameID)

	return &GameWriter{
		gameID:  gameID,
		tmpPath: tmpPath,
		outPath: filepath.Join(dir, name),
		file:    f,
		writer:  w,
	}, nil
}

func (g *GameWriter) GameID() string { return g.gameID }
func (g *GameWriter) Rows() int      { return g.rows }

func (g *GameWriter) Write(row TurnRow) error {
	if g.writer == nil {
		return fmt.Errorf("game writer is closed")
	}
	if _, err := g.writer.Write([]TurnRow{row}); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	g.rows++
	return nil
}

// Finalize records res in the file metadata, closes the file and renames it
// into place. It returns the final path.
func (g *GameWriter) Finalize(res engine.Result) (string, error) {
	if g.writer == nil {
		return "", fmt.Errorf("game writer is closed")
	}
	g.writer.SetKeyValueMetadata("variant", res.Variant)
	g.writer.SetKeyValueMetadata("reason", res.Reason.String())
	g.writer.SetKeyValueMetadata("score", strconv.Itoa(res.Score))
	g.writer.SetKeyValueMetadata("generation", strconv.Itoa(res.Generation))

	if err := g.close(); err != nil {
		_ = os.Remove(g.tmpPath)
		return "", err
	}
	if err := os.Rename(g.tmpPath, g.outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return g.outPath, nil
}

// Abort drops an unfinished game.
func (g *GameWriter) Abort() {
	_ = g.close()
	_ = os.Remove(g.tmpPath)
}

func (g *GameWriter) close() error {
	var closeErr, fileErr error
	if g.writer != nil {
		closeErr = g.writer.Close()
		g.writer = nil
	}
	if g.file != nil {
		_ = g.file.Sync()
		fileErr = g.file.Close()
		g.file = nil
	}
	if closeErr != nil {
		return fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return fmt.Errorf("close parquet file: %w", fileErr)
	}
	return nil
}

// Archiver is an engine.Observer that writes every finished game to its own
// parquet file. Games abandoned by a reset are discarded.
type Archiver struct {
	dir string
	log *slog.Logger

	current *GameWriter
	seq     int
	failed  string
}

func NewArchiver(dir string, log *slog.Logger) *Archiver {
	if log == nil {
		log = slog.Default()
	}
	return &Archiver{dir: dir, log: log}
}

func (a *Archiver) Frame(snap game.Snapshot) {
	if snap.GameID == a.failed {
		return
	}
	if a.current == nil || a.current.GameID() != snap.GameID {
		if a.current != nil {
			a.log.Debug("discarding unfinished archive", "game_id", a.current.GameID(), "rows", a.current.Rows())
			a.current.Abort()
		}
		w, err := NewGameWriter(a.dir, snap.GameID)
		if err != nil {
			a.fail(snap.GameID, err)
			return
		}
		a.current = w
		a.seq = 0
	}
	if err := a.current.Write(RowFromSnapshot(a.seq, snap)); err != nil {
		a.current.Abort()
		a.current = nil
		a.fail(snap.GameID, err)
		return
	}
	a.seq++
}

func (a *Archiver) Notice(string) {}

func (a *Archiver) GameOver(res engine.Result) {
	if a.current == nil || a.current.GameID() != res.GameID {
		return
	}
	w := a.current
	a.current = nil
	path, err := w.Finalize(res)
	if err != nil {
		a.log.Error("failed to archive game", "game_id", res.GameID, "error", err)
		return
	}
	a.log.Info("archived game", "game_id", res.GameID, "rows", w.Rows(), "path", path)
}

// Close discards any game still in progress.
func (a *Archiver) Close() {
	if a.current != nil {
		a.current.Abort()
		a.current = nil
	}
}

func (a *Archiver) fail(gameID string, err error) {
	a.failed = gameID
	a.log.Error("archive disabled for game", "game_id", gameID, "error", err)
}

// ArchiveInfo is the footer metadata of an archived game.
type ArchiveInfo struct {
	Path       string
	GameID     string
	Variant    string
	Reason     string
	Score      int
	Generation int
	Rows       int64
}

// ReadArchive loads every row of an archived game.
func ReadArchive(path string) ([]TurnRow, error) {
	rows, err := parquet.ReadFile[TurnRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}

// InspectArchive reads only the footer of an archived game.
func InspectArchive(path string) (ArchiveInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ArchiveInfo{}, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return ArchiveInfo{}, fmt.Errorf("stat archive: %w", err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return ArchiveInfo{}, fmt.Errorf("open parquet: %w", err)
	}

	if schema, _ := pf.Lookup("schema"); schema != archiveSchema {
		return ArchiveInfo{}, fmt.Errorf("%s: unexpected schema %q", path, schema)
	}
	info := ArchiveInfo{Path: path, Rows: pf.NumRows()}
	info.GameID, _ = pf.Lookup("game_id")
	info.Variant, _ = pf.Lookup("variant")
	info.Reason, _ = pf.Lookup("reason")
	if s, ok := pf.Lookup("score"); ok {
		info.Score, _ = strconv.Atoi(s)
	}
	if s, ok := pf.Lookup("generation"); ok {
		info.Generation, _ = strconv.Atoi(s)
	}
	return info, nil
}

// ListArchives returns the finished archives in dir, ignoring tmp/.
func ListArchives(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return paths, nil
}
