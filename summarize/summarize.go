// Package summarize implements the Summariser service from spec §4.6: it
// renders daily/weekly/monthly/yearly Markdown summaries through the LLM
// Router, and answers ad-hoc queries over the most recent summaries.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/layout"
	"github.com/yongseopkim/workrecap/llm"
	"github.com/yongseopkim/workrecap/logging"
	"github.com/yongseopkim/workrecap/model"
	"github.com/yongseopkim/workrecap/state"
)

const dailyTask = "daily_summary"

// Summariser renders Markdown summaries at every level and answers queries.
type Summariser struct {
	tree   layout.Tree
	router *llm.Router
	cache  *queryCache

	dailyState *state.DailyStateStore
	maxWorkers int
	logger     *logging.ContextLogger
}

// Config configures a Summariser.
type Config struct {
	DataDir    string
	Router     *llm.Router
	MaxWorkers int
}

// New builds a Summariser backed by the given data directory's state and an
// additive bbolt query-answer cache.
func New(cfg Config) (*Summariser, error) {
	tree := layout.New(cfg.DataDir)
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	cache, err := newQueryCache(tree.QueryCacheDB())
	if err != nil {
		return nil, fmt.Errorf("summarize: open query cache: %w", err)
	}
	return &Summariser{
		tree:       tree,
		router:     cfg.Router,
		cache:      cache,
		dailyState: state.NewDailyStateStore(tree.DailyState()),
		maxWorkers: maxWorkers,
		logger:     logging.New("summarize"),
	}, nil
}

// Close releases the query cache's underlying bbolt handle.
func (s *Summariser) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.close()
}

// Daily implements spec §4.6's daily level: read activities+stats, render
// the prompt, call the Router, and write data/summaries/{Y}/daily/{M-D}.md.
func (s *Summariser) Daily(ctx context.Context, date string) error {
	var activities []model.Activity
	if err := readJSONLIfExists(s.tree.Activities(date), &activities); err != nil {
		return &errs.SummarizeError{Level: "daily", Key: date, Msg: "read activities.jsonl", Cause: err}
	}
	var stats model.DailyStats
	if err := readJSONIfExists(s.tree.Stats(date), &stats); err != nil {
		return &errs.SummarizeError{Level: "daily", Key: date, Msg: "read stats.json", Cause: err}
	}

	user := renderDailyUserContent(date, activities, stats)
	text, err := s.router.Chat(ctx, dailyTask, dailySystemPrompt, user, false, 0, true)
	if err != nil {
		return &errs.SummarizeError{Level: "daily", Key: date, Msg: "llm call", Cause: err}
	}

	if err := writeSummary(s.tree.DailySummary(date), text); err != nil {
		return &errs.SummarizeError{Level: "daily", Key: date, Msg: "write summary", Cause: err}
	}
	if err := s.dailyState.Set(date, model.StageSummarize, time.Now()); err != nil {
		return &errs.StorageError{Backend: "state", Op: "daily state set", Cause: err}
	}
	return nil
}

func readJSONIfExists(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func readJSONLIfExists(path string, dst *[]model.Activity) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return decodeJSONL(data, dst)
}

func decodeJSONL(data []byte, dst *[]model.Activity) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var a model.Activity
		if err := dec.Decode(&a); err != nil {
			return err
		}
		*dst = append(*dst, a)
	}
	return nil
}
