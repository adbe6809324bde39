package game

// Snapshot is the render-facing view of a session handed to observers.
// It shares nothing with the live session.
type Snapshot struct {
	GameID       string   `json:"game_id"`
	State        string   `json:"state"`
	Size         int      `json:"size"`
	Rows         []string `json:"rows"`
	Player       Player   `json:"player"`
	Ghosts       []Ghost  `json:"ghosts"`
	Collectibles []Point  `json:"collectibles"`
	Score        int      `json:"score"`
	Generation   int      `json:"generation"`
	Total        int      `json:"total"`
	MouthOpen    bool     `json:"mouth_open"`
}

// Snapshot captures s. Only uncollected items are listed.
func (s *Session) Snapshot(state string) Snapshot {
	snap := Snapshot{
		GameID:     s.ID,
		State:      state,
		Player:     s.Player,
		Score:      s.Score,
		Generation: s.Generation,
		Total:      s.Total(),
		MouthOpen:  s.MouthOpen,
	}
	if s.Grid != nil {
		snap.Size = s.Grid.Size
		snap.Rows = s.Grid.Rows()
	}
	snap.Ghosts = make([]Ghost, len(s.Ghosts))
	copy(snap.Ghosts, s.Ghosts)
	snap.Collectibles = make([]Point, 0, len(s.Collectibles))
	for _, c := range s.Collectibles {
		if !c.Collected {
			snap.Collectibles = append(snap.Collectibles, c.Pos)
		}
	}
	return snap
}
