package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/store"
)

func botSession(player game.Point) *game.Session {
	return &game.Session{
		Grid:   game.NewGrid(7),
		Player: game.Player{Pos: player, Alive: true, Facing: game.Right},
	}
}

func TestGreedyMoveAvoidsLiveCells(t *testing.T) {
	s := botSession(game.Point{X: 3, Y: 3})
	s.Grid.Set(game.Point{X: 4, Y: 3}, true)
	s.Collectibles = []game.Collectible{{Pos: game.Point{X: 6, Y: 3}}}

	dir := greedyMove(s)
	if dir == game.Right {
		t.Fatalf("bot walked into a live cell")
	}
	if dir != game.Up && dir != game.Down {
		t.Fatalf("dir = %s, want a detour up or down", dir)
	}
}

func TestGreedyMovePrefersAwayFromGhosts(t *testing.T) {
	s := botSession(game.Point{X: 3, Y: 3})
	s.Collectibles = []game.Collectible{{Pos: game.Point{X: 3, Y: 0}}}
	s.Ghosts = []game.Ghost{{Pos: game.Point{X: 3, Y: 1}}}

	if dir := greedyMove(s); dir == game.Up {
		t.Fatalf("bot moved next to a ghost")
	}
}

func TestGreedyMoveBoxedIn(t *testing.T) {
	s := botSession(game.Point{X: 0, Y: 0})
	s.Grid.Set(game.Point{X: 1, Y: 0}, true)
	s.Grid.Set(game.Point{X: 0, Y: 1}, true)
	s.Player.Facing = game.Left
	if dir := greedyMove(s); dir != game.Left {
		t.Fatalf("dir = %s, want current facing", dir)
	}
}

func TestSimulateFinishesAndArchives(t *testing.T) {
	cfg := game.DefaultConfig
	cfg.GridSize = 12
	cfg.SeedCells = 20
	cfg.GhostCount = 2
	cfg.GhostMinDistance = 4
	cfg.Collectibles = 20
	cfg.ReplenishThreshold = 2
	cfg.ReplenishBatch = 10

	dir := t.TempDir()
	archiver := store.NewArchiver(dir, nil)
	defer archiver.Close()

	res, ok := simulate(cfg, 42, 5000, engine.Observers{archiver}, nil)
	if !ok {
		t.Skipf("bot survived 5000 generations")
	}
	if res.Total != res.Score+res.Generation {
		t.Fatalf("result = %+v", res)
	}

	paths, err := findArchives(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != res.GameID+".parquet" {
		t.Fatalf("archives = %v", paths)
	}
	rows, err := store.ReadArchive(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	last := rows[len(rows)-1]
	if last.State != "over" || int(last.Generation) != res.Generation {
		t.Fatalf("last row = %+v", last)
	}
}

func TestFindArchivesMissingDir(t *testing.T) {
	paths, err := findArchives(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(paths) != 0 {
		t.Fatalf("paths=%v err=%v", paths, err)
	}
}

func TestDrawRow(t *testing.T) {
	r := store.TurnRow{
		GameID: "g", Size: 3,
		LiveX: []int32{0}, LiveY: []int32{0},
		PlayerX: 1, PlayerY: 1,
		GhostX: []int32{2}, GhostY: []int32{2},
		ItemX: []int32{2, 0}, ItemY: []int32{0, 0},
	}
	lines := strings.Split(strings.TrimSpace(drawRow(r)), "\n")
	want := []string{"#.o", ".P.", "..G"}
	for i, w := range want {
		if lines[i+1] != w {
			t.Fatalf("line %d = %q, want %q\n%s", i, lines[i+1], w, drawRow(r))
		}
	}
}
