package blocklist

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runZeroInc/excrypto/crypto/sha256"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

const (
	DefaultMetaURL      = "https://update.badkeys.info/v0/badkeysdata.json"
	MaxResponseSize     = 1024 * 1024 * 512
	MetaDownloadTimeout = time.Second * 30
	DataDownloadTimeout = time.Hour

	CacheFileMetadata  = "badkeysdata.json"
	CacheFileBlocklist = "blocklist.dat"
	CacheFileLookup    = "lookup.txt"
)

// Cache keeps the blocklist files in a local directory and loads them once.
type Cache struct {
	sync.Mutex
	MetaURL string
	Client  *http.Client

	list    *List
	loadErr error
	dir     string
	lgr     *logrus.Logger
}

// NewCache returns a cache rooted at dir, or at DefaultDir when dir is empty.
func NewCache(dir string, lgr *logrus.Logger) *Cache {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Cache{
		MetaURL: DefaultMetaURL,
		Client:  http.DefaultClient,
		dir:     dir,
		lgr:     lgr,
	}
}

// DefaultDir is $HOME/.cache/badkeys, falling back to the executable's
// directory.
func DefaultDir() string {
	base, err := os.UserHomeDir()
	if err != nil || base == "" {
		exe, _ := os.Executable()
		exe, _ = filepath.Abs(exe)
		base = filepath.Dir(exe)
	}
	return filepath.Join(base, ".cache", "badkeys")
}

func (c *Cache) Dir() string {
	return c.dir
}

// Load returns the cached list, reading it from disk on first use.
func (c *Cache) Load() (*List, error) {
	c.Lock()
	defer c.Unlock()
	if c.list == nil && c.loadErr == nil {
		c.list, c.loadErr = c.loadFromDisk()
	}
	return c.list, c.loadErr
}

func (c *Cache) loadFromDisk() (*List, error) {
	meta, err := c.CurrentMetadata()
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	blocks, err := os.ReadFile(c.path(CacheFileBlocklist))
	if err != nil {
		return nil, fmt.Errorf("blocklist: %w", err)
	}
	if len(blocks)%BlockLength != 0 {
		return nil, fmt.Errorf("blocklist: size %d is not a multiple of %d", len(blocks), BlockLength)
	}
	list := NewList(meta, blocks)

	rdr, err := os.Open(c.path(CacheFileLookup))
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	defer rdr.Close()
	if err := list.ReadLookup(rdr, c.lgr); err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	c.lgr.Debugf("loaded %d blocklisted keys from %s (%s)", list.Len(), c.dir, meta.Date)
	return list, nil
}

// CurrentMetadata reads the manifest of the cached files.
func (c *Cache) CurrentMetadata() (*Meta, error) {
	rdr, err := os.Open(c.path(CacheFileMetadata))
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	return ReadMeta(rdr)
}

// Update downloads a newer blocklist when the published manifest date
// differs from the cached one. It returns the previous and current dates.
func (c *Cache) Update(ctx context.Context) (string, string, error) {
	var pre, cur string

	body, err := c.fetchData(ctx, c.MetaURL, MetaDownloadTimeout)
	if err != nil {
		return pre, cur, fmt.Errorf("failed to retrieve %s: %w", c.MetaURL, err)
	}
	meta := &Meta{}
	if err := json.Unmarshal(body, meta); err != nil {
		return pre, cur, fmt.Errorf("failed to decode %s: %w", c.MetaURL, err)
	}
	cur = meta.Date

	for _, u := range []string{meta.BlocklistURL, meta.LookupURL} {
		if !(strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")) {
			return pre, cur, fmt.Errorf("bad data url %q", u)
		}
	}

	if old, err := c.CurrentMetadata(); err == nil {
		pre = old.Date
		if old.Date == meta.Date {
			return pre, cur, nil
		}
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return pre, cur, err
	}

	// Temporary files are removed on any early return
	tmpFiles := []string{}
	defer func() {
		for _, name := range tmpFiles {
			_ = os.Remove(c.path(name))
		}
	}()

	tmpFiles = append(tmpFiles, CacheFileMetadata+".tmp")
	if err := os.WriteFile(c.path(CacheFileMetadata+".tmp"), body, 0o644); err != nil {
		return pre, cur, fmt.Errorf("failed to write metadata: %w", err)
	}

	tmpFiles = append(tmpFiles, CacheFileBlocklist+".tmp")
	if err := c.downloadXZ(ctx, meta.BlocklistURL, meta.BlocklistSHA256, CacheFileBlocklist+".tmp"); err != nil {
		return pre, cur, err
	}

	tmpFiles = append(tmpFiles, CacheFileLookup+".tmp")
	if err := c.downloadXZ(ctx, meta.LookupURL, meta.LookupSHA256, CacheFileLookup+".tmp"); err != nil {
		return pre, cur, err
	}

	// The manifest goes last so a partial update is never mistaken for a
	// current one.
	for _, name := range []string{CacheFileBlocklist, CacheFileLookup, CacheFileMetadata} {
		if err := os.Rename(c.path(name+".tmp"), c.path(name)); err != nil {
			return pre, cur, err
		}
	}

	c.Lock()
	c.list, c.loadErr = nil, nil
	c.Unlock()
	return pre, cur, nil
}

// downloadXZ fetches an xz stream, decompresses it to name and checks the
// SHA-256 of the decompressed data.
func (c *Cache) downloadXZ(ctx context.Context, u string, hash string, name string) error {
	bodyHashExp, err := hex.DecodeString(hash)
	if err != nil {
		return fmt.Errorf("bad sha256 for %s in metadata: %w", name, err)
	}

	res, cancel, err := c.fetch(ctx, u, DataDownloadTimeout)
	defer cancel()
	if err != nil {
		return fmt.Errorf("download failed for %s: %w", name, err)
	}
	defer res.Body.Close()

	w, err := os.Create(c.path(name))
	if err != nil {
		return fmt.Errorf("create failed for %s: %w", name, err)
	}
	defer w.Close()

	r, err := xz.NewReader(io.LimitReader(res.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("xz read failed for %s: %w", name, err)
	}
	h := sha256.New()
	if _, err = io.Copy(io.MultiWriter(w, h), r); err != nil {
		return fmt.Errorf("read failed for %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write failed for %s: %w", name, err)
	}

	bodyHashGot := h.Sum(nil)
	if !bytes.Equal(bodyHashExp, bodyHashGot) {
		return fmt.Errorf("bad sha256 for %s, expected %s and got %s", name, hash, hex.EncodeToString(bodyHashGot))
	}
	return nil
}

func (c *Cache) path(name string) string {
	return filepath.Join(c.dir, filepath.Base(name))
}
