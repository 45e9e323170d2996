package state

import (
	"fmt"

	"github.com/yongseopkim/workrecap/model"
)

// FetchProgressStore caches the buffered search results for one monthly
// chunk/kind pair, so a range run restarted mid-backfill does not re-search
// chunks it already completed. Per spec §6, each chunk is its own file at
// data/state/fetch_progress/{slugified-chunk-key}.json.
type FetchProgressStore struct {
	dir string
}

// NewFetchProgressStore opens the fetch-progress directory.
func NewFetchProgressStore(dir string) *FetchProgressStore {
	return &FetchProgressStore{dir: dir}
}

// ChunkKey builds the canonical "{since}..{until}/{kind}" cache key.
func ChunkKey(since, until, kind string) string {
	return fmt.Sprintf("%s..%s/%s", since, until, kind)
}

func (s *FetchProgressStore) pathFor(key string) string {
	return s.dir + "/" + slugify(key) + ".json"
}

// Save persists bucket for key, overwriting any prior cache entry.
func (s *FetchProgressStore) Save(key string, bucket model.FetchProgressBucket) error {
	f := newJSONFile(s.pathFor(key))
	holder := model.FetchProgressBucket{}
	return f.withLocked(&holder, func() bool {
		holder = bucket
		return true
	})
}

// Load returns the cached bucket for key and whether it was found.
func (s *FetchProgressStore) Load(key string) (model.FetchProgressBucket, bool, error) {
	f := newJSONFile(s.pathFor(key))
	var bucket model.FetchProgressBucket
	found := fileExists(s.pathFor(key))
	err := f.withLocked(&bucket, func() bool { return false })
	return bucket, found, err
}

// Clear deletes key's cache entry after its chunk has been fully consumed.
func (s *FetchProgressStore) Clear(key string) error {
	return removeIfExists(s.pathFor(key))
}

func slugify(key string) string {
	out := make([]byte, 0, len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, byte(r))
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
