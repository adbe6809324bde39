// Package submit posts finished games to a score backend.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
)

// Payload is the body of a score submission. HighScore is the game's total.
type Payload struct {
	Username  string `json:"username,omitempty"`
	HighScore int    `json:"high_score"`
	GameID    string `json:"game_id"`
	Variant   string `json:"variant,omitempty"`
}

type Config struct {
	URL       string
	Username  string
	Timeout   time.Duration
	UserAgent string
}

// Submitter is an engine.Observer that posts each game result in the
// background. Failures are logged and never reach the game.
type Submitter struct {
	config Config
	client *http.Client
	log    *slog.Logger

	wg sync.WaitGroup
}

func New(config Config, log *slog.Logger) *Submitter {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "conpac/1.0"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Submitter{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		log:    log,
	}
}

// Submit posts p and waits for the response.
func (s *Submitter) Submit(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post score: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("post score: status %d: %s", resp.StatusCode, describeBody(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *Submitter) Frame(game.Snapshot) {}
func (s *Submitter) Notice(string)       {}

func (s *Submitter) GameOver(res engine.Result) {
	p := Payload{
		Username:  s.config.Username,
		HighScore: res.Total,
		GameID:    res.GameID,
		Variant:   res.Variant,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
		defer cancel()

		if err := s.Submit(ctx, p); err != nil {
			s.log.Warn("failed to submit score", "game_id", p.GameID, "error", err)
			return
		}
		s.log.Info("score submitted", "game_id", p.GameID, "high_score", p.HighScore)
	}()
}

// Wait blocks until every submission started so far has finished.
func (s *Submitter) Wait() {
	s.wg.Wait()
}

// describeBody turns an error response into one short line. Proxies in front
// of the backend answer with HTML pages, so for those the page title and
// first heading are used.
func describeBody(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return http.StatusText(resp.StatusCode)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return truncate(strings.TrimSpace(string(data)), 200)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return http.StatusText(resp.StatusCode)
	}
	parts := make([]string, 0, 2)
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}
	if h := strings.TrimSpace(doc.Find("h1, h2").First().Text()); h != "" && (len(parts) == 0 || h != parts[0]) {
		parts = append(parts, h)
	}
	if len(parts) == 0 {
		return http.StatusText(resp.StatusCode)
	}
	return truncate(strings.Join(parts, ": "), 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
