package state

import (
	"errors"
	"time"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/model"
)

// FailedDateStore records per-date failure history so range runs can retry
// retryable dates and skip permanently-failed ones, per spec §4.2/§7.
type FailedDateStore struct {
	file *jsonFile
}

// NewFailedDateStore opens the failed-dates file at path.
func NewFailedDateStore(path string) *FailedDateStore {
	return &FailedDateStore{file: newJSONFile(path)}
}

// RecordFailure classifies cause (by embedded HTTP status if present,
// retryable otherwise), increments the date's attempt count, and persists
// the entry. A date already classified permanent stays permanent.
func (s *FailedDateStore) RecordFailure(date, phase string, cause error) error {
	fd := model.FailedDate{}
	return s.file.withLocked(&fd, func() bool {
		entry, existed := fd[date]
		oldClass := entry.ClassifiedAs
		if !existed {
			entry.FirstFailureAt = time.Now()
		}
		entry.Phase = phase
		entry.LastError = cause.Error()
		entry.AttemptCount++
		entry.ClassifiedAs = classify(cause)
		if existed && oldClass == model.FailurePermanent {
			entry.ClassifiedAs = model.FailurePermanent
		}
		fd[date] = entry
		return true
	})
}

func classify(cause error) model.FailureClass {
	var fetchErr *errs.FetchError
	if errors.As(cause, &fetchErr) && fetchErr.Class == errs.ClassPermanent {
		return model.FailurePermanent
	}
	return model.FailureRetryable
}

// RecordSuccess removes date's failure entry, if any.
func (s *FailedDateStore) RecordSuccess(date string) error {
	fd := model.FailedDate{}
	return s.file.withLocked(&fd, func() bool {
		if _, ok := fd[date]; !ok {
			return false
		}
		delete(fd, date)
		return true
	})
}

// Entry returns date's failure record and whether it exists.
func (s *FailedDateStore) Entry(date string) (model.FailedDateEntry, bool, error) {
	fd := model.FailedDate{}
	err := s.file.withLocked(&fd, func() bool { return false })
	entry, ok := fd[date]
	return entry, ok, err
}

// RetryableDates returns the subset of candidates whose entry is either
// absent, or classified retryable with attempts still below maxRetries.
func (s *FailedDateStore) RetryableDates(candidates []string, maxRetries int) ([]string, error) {
	fd := model.FailedDate{}
	if err := s.file.withLocked(&fd, func() bool { return false }); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(candidates))
	for _, d := range candidates {
		entry, ok := fd[d]
		if !ok {
			out = append(out, d)
			continue
		}
		if entry.ClassifiedAs == model.FailureRetryable && entry.AttemptCount < maxRetries {
			out = append(out, d)
		}
	}
	return out, nil
}

// ExhaustedDates returns dates that are classified permanent, or retryable
// but have already reached maxRetries attempts.
func (s *FailedDateStore) ExhaustedDates(maxRetries int) ([]string, error) {
	fd := model.FailedDate{}
	if err := s.file.withLocked(&fd, func() bool { return false }); err != nil {
		return nil, err
	}
	out := make([]string, 0)
	for d, entry := range fd {
		if entry.ClassifiedAs == model.FailurePermanent || entry.AttemptCount >= maxRetries {
			out = append(out, d)
		}
	}
	return out, nil
}
