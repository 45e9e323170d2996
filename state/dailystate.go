package state

import (
	"sort"
	"time"

	"github.com/yongseopkim/workrecap/model"
)

// DailyStateStore tracks, per date, the last instant each stage touched it,
// and derives the cascade staleness predicates from spec §4.2.
type DailyStateStore struct {
	file *jsonFile
}

// NewDailyStateStore opens the daily-state file at path.
func NewDailyStateStore(path string) *DailyStateStore {
	return &DailyStateStore{file: newJSONFile(path)}
}

// Get returns the entry for date, zero value if absent.
func (s *DailyStateStore) Get(date string) (model.DailyStateEntry, error) {
	ds := model.DailyState{}
	err := s.file.withLocked(&ds, func() bool { return false })
	return ds[date], err
}

// Set records that stage touched date at instant, and persists it.
func (s *DailyStateStore) Set(date string, stage model.StageName, instant time.Time) error {
	ds := model.DailyState{}
	return s.file.withLocked(&ds, func() bool {
		entry := ds[date]
		switch stage {
		case model.StageFetch:
			entry.FetchedAt = &instant
		case model.StageNormalize:
			entry.NormalizedAt = &instant
		case model.StageSummarize:
			entry.SummarizedAt = &instant
		}
		ds[date] = entry
		return true
	})
}

// FetchStale is true iff no fetch timestamp exists, or its date component is
// on or before the target date — a same-day fetch is still considered stale
// because evening activity may post later.
func (s *DailyStateStore) FetchStale(date string) (bool, error) {
	entry, err := s.Get(date)
	if err != nil {
		return false, err
	}
	if entry.FetchedAt == nil {
		return true, nil
	}
	return entry.FetchedAt.UTC().Format("2006-01-02") <= date, nil
}

// NormalizeStale is true iff the fetch timestamp is newer than the
// normalise timestamp (or normalise never ran but fetch did).
func (s *DailyStateStore) NormalizeStale(date string) (bool, error) {
	entry, err := s.Get(date)
	if err != nil {
		return false, err
	}
	if entry.FetchedAt == nil {
		return false, nil
	}
	if entry.NormalizedAt == nil {
		return true, nil
	}
	return entry.FetchedAt.After(*entry.NormalizedAt), nil
}

// SummarizeStale is true iff the normalise timestamp is newer than the
// summarise timestamp (or summarise never ran but normalise did).
func (s *DailyStateStore) SummarizeStale(date string) (bool, error) {
	entry, err := s.Get(date)
	if err != nil {
		return false, err
	}
	if entry.NormalizedAt == nil {
		return false, nil
	}
	if entry.SummarizedAt == nil {
		return true, nil
	}
	return entry.NormalizedAt.After(*entry.SummarizedAt), nil
}

// StaleDates filters candidates down to those for which pred reports stale.
func (s *DailyStateStore) StaleDates(candidates []string, pred func(date string) (bool, error)) ([]string, error) {
	out := make([]string, 0, len(candidates))
	for _, d := range candidates {
		stale, err := pred(d)
		if err != nil {
			return nil, err
		}
		if stale {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out, nil
}
