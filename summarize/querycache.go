package summarize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var answersBucket = []byte("answers")

// queryCache is the additive, non-canonical bbolt-backed cache from
// SPEC_FULL §B.2: identical questions (scoped by months_back and the mtimes
// of the context files used) skip the LLM call entirely.
type queryCache struct {
	db *bolt.DB
}

func newQueryCache(path string) (*queryCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(answersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &queryCache{db: db}, nil
}

func (c *queryCache) close() error {
	return c.db.Close()
}

func cacheKey(question string, monthsBack int, contextPaths []string) string {
	h := sha256.New()
	h.Write([]byte(question))
	fmt.Fprintf(h, ":%d:", monthsBack)
	for _, p := range contextPaths {
		mtime, _ := fileMtime(p)
		h.Write([]byte(strings.Join([]string{p, mtime.String()}, "@")))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *queryCache) get(key string) (string, bool, error) {
	var answer string
	var found bool
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(answersBucket)
		v := b.Get([]byte(key))
		if v != nil {
			answer = string(v)
			found = true
		}
		return nil
	})
	return answer, found, err
}

func (c *queryCache) put(key, answer string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(answersBucket)
		return b.Put([]byte(key), []byte(answer))
	})
}
