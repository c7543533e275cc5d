package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"phpsniff/internal/diag"
	"phpsniff/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores per-file check results on disk, keyed by content hash
// and ruleset fingerprint. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached result of checking one file. Spans are stored
// as byte offsets; the file ID is rebound on load.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	Fingerprint string
	Diagnostics []cachedDiagnostic
}

type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Source   string
	Message  string
	Start    uint32
	End      uint32
	Notes    []cachedNote
	Fixes    []cachedFix
}

type cachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

type cachedFix struct {
	ID            string
	Title         string
	Kind          uint8
	Applicability uint8
	IsPreferred   bool
	RequiresAll   bool
	Edits         []cachedEdit
}

type cachedEdit struct {
	Start   uint32
	End     uint32
	NewText string
	OldText string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens (creating if needed) a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// after a successful rename the temp name is gone
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. Entries with
// a different schema version count as misses.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// toDiskPayload flattens diagnostics for caching.
func toDiskPayload(path, fingerprint string, diags []*diag.Diagnostic) *DiskPayload {
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        path,
		Fingerprint: fingerprint,
		Diagnostics: make([]cachedDiagnostic, 0, len(diags)),
	}
	for _, d := range diags {
		if d == nil {
			continue
		}
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Source:   d.Source,
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		for _, fx := range d.Fixes {
			cf := cachedFix{
				ID:            fx.ID,
				Title:         fx.Title,
				Kind:          uint8(fx.Kind),
				Applicability: uint8(fx.Applicability),
				IsPreferred:   fx.IsPreferred,
				RequiresAll:   fx.RequiresAll,
			}
			for _, e := range fx.Edits {
				cf.Edits = append(cf.Edits, cachedEdit{
					Start:   e.Span.Start,
					End:     e.Span.End,
					NewText: e.NewText,
					OldText: e.OldText,
				})
			}
			cd.Fixes = append(cd.Fixes, cf)
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}
	return payload
}

// restore rebuilds diagnostics for the file now known as id.
func (p *DiskPayload) restore(id source.FileID) []*diag.Diagnostic {
	if p == nil {
		return nil
	}
	span := func(start, end uint32) source.Span {
		return source.Span{File: id, Start: start, End: end}
	}
	out := make([]*diag.Diagnostic, 0, len(p.Diagnostics))
	for _, cd := range p.Diagnostics {
		d := &diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Source:   cd.Source,
			Message:  cd.Message,
			Primary:  span(cd.Start, cd.End),
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: span(n.Start, n.End), Msg: n.Msg})
		}
		for _, cf := range cd.Fixes {
			fx := diag.Fix{
				ID:            cf.ID,
				Title:         cf.Title,
				Kind:          diag.FixKind(cf.Kind),
				Applicability: diag.FixApplicability(cf.Applicability),
				IsPreferred:   cf.IsPreferred,
				RequiresAll:   cf.RequiresAll,
			}
			for _, e := range cf.Edits {
				fx.Edits = append(fx.Edits, diag.TextEdit{Span: span(e.Start, e.End), NewText: e.NewText, OldText: e.OldText})
			}
			d.Fixes = append(d.Fixes, fx)
		}
		out = append(out, d)
	}
	return out
}
