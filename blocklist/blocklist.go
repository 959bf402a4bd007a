// Package blocklist checks RSA public keys against the badkeys.info list of
// known-compromised keys.
package blocklist

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// BlockLength is the size of one blocklist record: a hash prefix
	// followed by the repository id.
	BlockLength     = 16
	BlockHashPrefix = 15
	MaxLookupLine   = 4096
)

// ErrNotListed is returned when a key is absent from the blocklist.
var ErrNotListed = errors.New("key is not listed")

// Meta is the badkeysdata.json manifest.
type Meta struct {
	BKFormat        int    `json:"bkformat,omitempty"`
	Date            string `json:"date,omitempty"`
	BlocklistURL    string `json:"blocklist_url,omitempty"`
	BlocklistSHA256 string `json:"blocklist_sha256,omitempty"`
	LookupURL       string `json:"lookup_url,omitempty"`
	LookupSHA256    string `json:"lookup_sha256,omitempty"`
	Blocklists      []Repo `json:"blocklists,omitempty"`
}

// Repo describes where a set of listed keys was published.
type Repo struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Repo string `json:"repo,omitempty"`
	Path string `json:"path,omitempty"`
}

func ReadMeta(r io.Reader) (*Meta, error) {
	meta := &Meta{}
	if err := json.NewDecoder(r).Decode(meta); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return meta, nil
}

// List is a loaded blocklist. Blocks must be sorted by hash prefix.
type List struct {
	Meta   *Meta
	Blocks []byte
	Repos  map[int]Repo

	paths   map[uint64][]int
	strings []string
}

func NewList(meta *Meta, blocks []byte) *List {
	l := &List{
		Meta:   meta,
		Blocks: blocks,
		Repos:  make(map[int]Repo),
		paths:  make(map[uint64][]int),
	}
	if meta != nil {
		for _, repo := range meta.Blocklists {
			l.Repos[repo.ID] = repo
		}
	}
	return l
}

// Len is the number of listed keys.
func (l *List) Len() int {
	return len(l.Blocks) / BlockLength
}

// ReadLookup loads "<hex id>;<path>" lines mapping a block to the file it
// came from. Path components are interned since most are shared.
func (l *List) ReadLookup(r io.Reader, lgr *logrus.Logger) error {
	intern := make(map[string]int)
	for _, s := range l.strings {
		intern[s] = len(intern)
	}

	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, MaxLookupLine), MaxLookupLine)
	for scan.Scan() {
		kid, kpath, ok := strings.Cut(scan.Text(), ";")
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(kid, 16, 64)
		if err != nil {
			lgr.Errorf("invalid key id %s: %v", kid, err)
			continue
		}
		parts := strings.Split(kpath, "/")
		idx := make([]int, len(parts))
		for i, part := range parts {
			sid, found := intern[part]
			if !found {
				sid = len(l.strings)
				intern[part] = sid
				l.strings = append(l.strings, part)
			}
			idx[i] = sid
		}
		l.paths[id] = idx
	}
	return scan.Err()
}

// Find returns the block whose hash prefix equals prefix.
func (l *List) Find(prefix []byte) ([]byte, error) {
	if len(prefix) < BlockHashPrefix {
		return nil, fmt.Errorf("prefix too short: %d bytes", len(prefix))
	}
	prefix = prefix[:BlockHashPrefix]
	i := sort.Search(l.Len(), func(i int) bool {
		off := i * BlockLength
		return bytes.Compare(l.Blocks[off:off+BlockHashPrefix], prefix) >= 0
	}) * BlockLength
	if i < len(l.Blocks) && bytes.Equal(l.Blocks[i:i+BlockHashPrefix], prefix) {
		return l.Blocks[i : i+BlockLength], nil
	}
	return nil, ErrNotListed
}

// Lookup resolves a hash prefix to the repository entry that lists it.
func (l *List) Lookup(prefix []byte) (*Result, error) {
	block, err := l.Find(prefix)
	if err != nil {
		return nil, err
	}
	repo, ok := l.Repos[int(block[BlockHashPrefix])]
	if !ok {
		return nil, fmt.Errorf("repo %d is missing", block[BlockHashPrefix])
	}
	res := &Result{
		Repo:     repo.Repo,
		RepoID:   repo.ID,
		RepoType: repo.Type,
		RepoPath: repo.Path,
		RepoName: repo.Name,
	}
	if idx, ok := l.paths[binary.BigEndian.Uint64(block[:8])]; ok {
		parts := make([]string, len(idx))
		for i, sid := range idx {
			parts[i] = l.strings[sid]
		}
		res.KeyPath = path.Join(parts...)
	}
	return res, nil
}

// LookupPublicKey hashes pub and looks it up.
func (l *List) LookupPublicKey(pub any) (*Result, error) {
	prefix, err := PrefixFromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return l.Lookup(prefix)
}
