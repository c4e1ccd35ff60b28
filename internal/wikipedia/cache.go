package wikipedia

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Cache stores fetched revision lists on disk, one file per resolved
// article title. Entries are written once and treated as immutable.
type Cache struct {
	dir string
}

// NewCache creates a revision cache under dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "wikipedia: create cache dir %s", dir)
	}
	return &Cache{dir: dir}, nil
}

// CacheFileName returns the file name for a resolved title: the hex MD5
// digest of the UTF-8 title plus a .revisions extension.
func CacheFileName(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:]) + ".revisions"
}

func (c *Cache) path(title string) string {
	return filepath.Join(c.dir, CacheFileName(title))
}

// Has reports whether a cache entry exists for title.
func (c *Cache) Has(title string) bool {
	_, err := os.Stat(c.path(title))
	return err == nil
}

// Write serializes revs for title. An empty revision list is a valid entry.
func (c *Cache) Write(title string, revs []Revision) error {
	if revs == nil {
		revs = []Revision{}
	}
	data, err := json.Marshal(revs)
	if err != nil {
		return eris.Wrapf(err, "wikipedia: marshal revisions for %q", title)
	}
	if err := os.WriteFile(c.path(title), data, 0o644); err != nil {
		return eris.Wrapf(err, "wikipedia: write cache entry for %q", title)
	}
	return nil
}

// Read loads the cached revisions for title. A missing entry is an error:
// feature extraction must never run on silently absent history.
func (c *Cache) Read(title string) ([]Revision, error) {
	data, err := os.ReadFile(c.path(title))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Errorf("wikipedia: expected cache file %s not found for %q", CacheFileName(title), title)
		}
		return nil, eris.Wrapf(err, "wikipedia: read cache entry for %q", title)
	}
	var revs []Revision
	if err := json.Unmarshal(data, &revs); err != nil {
		return nil, eris.Wrapf(err, "wikipedia: decode cache entry for %q", title)
	}
	return revs, nil
}
