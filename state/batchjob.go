package state

import "github.com/yongseopkim/workrecap/model"

// BatchJobStore tracks submitted LLM batch jobs for crash recovery, per
// spec §4.2.
type BatchJobStore struct {
	file *jsonFile
}

// NewBatchJobStore opens the batch-jobs file at path.
func NewBatchJobStore(path string) *BatchJobStore {
	return &BatchJobStore{file: newJSONFile(path)}
}

// Save records a newly submitted batch job.
func (s *BatchJobStore) Save(id string, entry model.BatchJobEntry) error {
	bj := model.BatchJob{}
	return s.file.withLocked(&bj, func() bool {
		bj[id] = entry
		return true
	})
}

// UpdateStatus transitions an existing batch job's status.
func (s *BatchJobStore) UpdateStatus(id string, status model.BatchStatus) error {
	bj := model.BatchJob{}
	return s.file.withLocked(&bj, func() bool {
		entry, ok := bj[id]
		if !ok {
			return false
		}
		entry.Status = status
		bj[id] = entry
		return true
	})
}

// ActiveJobs returns every batch job not yet in a terminal state.
func (s *BatchJobStore) ActiveJobs() (model.BatchJob, error) {
	bj := model.BatchJob{}
	err := s.file.withLocked(&bj, func() bool { return false })
	if err != nil {
		return nil, err
	}
	active := model.BatchJob{}
	for id, entry := range bj {
		if entry.Status == model.BatchInProgress {
			active[id] = entry
		}
	}
	return active, nil
}
