package state

import "github.com/yongseopkim/workrecap/model"

// CheckpointStore persists the last successfully completed date per stage,
// guarded by a monotonicity rule: a smaller date string never overwrites a
// larger one, so out-of-order worker completions cannot rewind progress.
type CheckpointStore struct {
	file *jsonFile
}

// NewCheckpointStore opens (without yet reading) the checkpoint file at path.
func NewCheckpointStore(path string) *CheckpointStore {
	return &CheckpointStore{file: newJSONFile(path)}
}

// Update sets stage's checkpoint to date if date is strictly greater than
// the current value (ISO date strings compare correctly lexicographically).
// Returns true if the checkpoint advanced.
func (s *CheckpointStore) Update(stage model.StageName, date string) (bool, error) {
	var advanced bool
	cp := model.Checkpoint{}
	err := s.file.withLocked(&cp, func() bool {
		current, ok := cp[stage]
		if ok && current >= date {
			return false
		}
		cp[stage] = date
		advanced = true
		return true
	})
	return advanced, err
}

// Get returns the current checkpoint snapshot.
func (s *CheckpointStore) Get() (model.Checkpoint, error) {
	cp := model.Checkpoint{}
	err := s.file.withLocked(&cp, func() bool { return false })
	return cp, err
}

// GetStage returns the checkpoint date for one stage, "" if unset.
func (s *CheckpointStore) GetStage(stage model.StageName) (string, error) {
	cp, err := s.Get()
	if err != nil {
		return "", err
	}
	return cp[stage], nil
}
