package fileloader

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sentinel-rag/promptkit"
)

// defaultExtension is appended to template names when resolving files.
const defaultExtension = ".txt"

// Signature identifies one observed modification state of a backing file.
// Two equal signatures mean the cached template is still current.
type Signature struct {
	ModTime time.Time
	Size    int64
}

// StatFunc reports the current modification signature of a path.
// Injected so tests can simulate file changes without timing races.
type StatFunc func(path string) (Signature, error)

func osStat(path string) (Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Signature{}, err
	}
	return Signature{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// LoadEvent is one entry of the load history.
type LoadEvent struct {
	Name        string
	Version     string
	ContentHash string
	At          time.Time
}

// Comparison summarizes how a loaded template differs from other content.
type Comparison struct {
	Name           string
	CurrentVersion string
	HashesMatch    bool
	CurrentHash    string
	OtherHash      string
	CurrentLength  int
	OtherLength    int
}

type cacheEntry struct {
	tpl  *promptkit.Template
	sig  Signature
	hash string
}

// Loader resolves templates by name from a directory, caching validated
// templates keyed by name. Cache hits do not touch storage unless auto-reload
// is enabled, in which case only the modification signature is checked.
// Safe for concurrent use.
type Loader struct {
	dir           string
	ext           string
	autoReload    bool
	cacheDisabled bool
	stat          StatFunc

	mu      sync.RWMutex
	cache   map[string]*cacheEntry
	history []LoadEvent
	sf      singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithAutoReload makes Load check the file's modification signature on every
// cache hit and reload when it changed.
func WithAutoReload() Option {
	return func(l *Loader) { l.autoReload = true }
}

// WithCacheDisabled makes every Load read and validate from storage.
func WithCacheDisabled() Option {
	return func(l *Loader) { l.cacheDisabled = true }
}

// WithStatFunc replaces the modification-signature source (default: os.Stat).
func WithStatFunc(fn StatFunc) Option {
	return func(l *Loader) { l.stat = fn }
}

// WithExtension sets the file extension appended to template names (default ".txt").
func WithExtension(ext string) Option {
	return func(l *Loader) { l.ext = ext }
}

// New creates a Loader reading templates from dir.
func New(dir string, opts ...Option) *Loader {
	l := &Loader{
		dir:   dir,
		ext:   defaultExtension,
		stat:  osStat,
		cache: make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the backing template directory.
func (l *Loader) Dir() string { return l.dir }

func (l *Loader) path(name string) string {
	if strings.HasSuffix(name, l.ext) {
		return filepath.Join(l.dir, name)
	}
	return filepath.Join(l.dir, name+l.ext)
}

// Load returns the template for name, already strict-validated. A cached
// entry is served without touching storage when auto-reload is disabled or
// the modification signature is unchanged. A failed load leaves any prior
// valid entry in place; the caller must retry after fixing the file.
func (l *Loader) Load(name string) (*promptkit.Template, error) {
	if !l.cacheDisabled {
		if tpl, ok := l.cached(name); ok {
			return tpl, nil
		}
	}
	// At most one in-flight load per name; concurrent misses share the result.
	v, err, _ := l.sf.Do(name, func() (any, error) {
		if !l.cacheDisabled {
			if tpl, ok := l.cached(name); ok {
				return tpl, nil
			}
		}
		return l.loadFresh(name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*promptkit.Template), nil
}

// cached returns the cache entry for name when it is still current.
func (l *Loader) cached(name string) (*promptkit.Template, bool) {
	l.mu.RLock()
	ent, ok := l.cache[name]
	l.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !l.autoReload {
		return ent.tpl, true
	}
	sig, err := l.stat(l.path(name))
	if err != nil {
		// Backing file vanished; stale-but-valid beats failing the caller.
		return ent.tpl, true
	}
	if sig == ent.sig {
		return ent.tpl, true
	}
	return nil, false
}

func (l *Loader) loadFresh(name string) (*promptkit.Template, error) {
	path := l.path(name)
	sig, err := l.stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", promptkit.ErrTemplateNotFound, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", promptkit.ErrTemplateNotFound, name)
	}
	tpl := promptkit.New(name, string(data))
	if ok, issues := promptkit.Validate(tpl, true); !ok {
		return nil, &InvalidTemplateError{Name: name, Issues: issues}
	}
	hash := contentHash(data)
	l.mu.Lock()
	if !l.cacheDisabled {
		l.cache[name] = &cacheEntry{tpl: tpl, sig: sig, hash: hash}
	}
	l.history = append(l.history, LoadEvent{
		Name:        name,
		Version:     tpl.Version(),
		ContentHash: hash,
		At:          time.Now(),
	})
	l.mu.Unlock()
	return tpl, nil
}

// LoadOrDefault returns the template for name, or one built from
// defaultContent when no backing file exists. Other load failures propagate.
func (l *Loader) LoadOrDefault(name, defaultContent string) (*promptkit.Template, error) {
	tpl, err := l.Load(name)
	if err == nil {
		return tpl, nil
	}
	if errors.Is(err, promptkit.ErrTemplateNotFound) {
		return promptkit.New(name, defaultContent), nil
	}
	return nil, err
}

// Render loads name and renders it in strict mode.
func (l *Loader) Render(name string, vars map[string]string) (string, error) {
	tpl, err := l.Load(name)
	if err != nil {
		return "", err
	}
	return tpl.Render(vars)
}

// RenderSafe loads name and renders it tolerantly. A load failure is reported
// as a single warning alongside a visible marker, never as an error.
func (l *Loader) RenderSafe(name string, vars map[string]string) (string, []string) {
	tpl, err := l.Load(name)
	if err != nil {
		return "[PROMPT NOT FOUND: " + name + "]", []string{err.Error()}
	}
	return tpl.RenderSafe(vars)
}

// Names lists the template names backed by files in the directory, sorted.
func (l *Loader) Names() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("fileloader: read dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), l.ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), l.ext))
	}
	slices.Sort(names)
	return names, nil
}

// Templates loads every template in the directory, skipping ones that fail.
func (l *Loader) Templates() ([]*promptkit.Template, error) {
	names, err := l.Names()
	if err != nil {
		return nil, err
	}
	var out []*promptkit.Template
	for _, name := range names {
		tpl, err := l.Load(name)
		if err != nil {
			continue
		}
		out = append(out, tpl)
	}
	return out, nil
}

// ValidateAll strict-validates every template in the directory and returns
// issues keyed by name. Diagnostic sweep: it never fails on an individual
// invalid template, and valid templates do not appear in the result.
func (l *Loader) ValidateAll() (map[string][]promptkit.Issue, error) {
	names, err := l.Names()
	if err != nil {
		return nil, err
	}
	issues := make(map[string][]promptkit.Issue)
	for _, name := range names {
		data, err := os.ReadFile(l.path(name))
		if err != nil {
			issues[name] = []promptkit.Issue{{
				Severity: promptkit.SeverityError,
				Code:     "READ_ERROR",
				Message:  err.Error(),
			}}
			continue
		}
		tpl := promptkit.New(name, string(data))
		if _, found := promptkit.Validate(tpl, true); len(found) > 0 {
			issues[name] = found
		}
	}
	return issues, nil
}

// Invalidate drops the cache entry for name, forcing the next Load to re-read.
func (l *Loader) Invalidate(name string) {
	l.mu.Lock()
	delete(l.cache, name)
	l.mu.Unlock()
}

// InvalidateAll drops every cache entry.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	l.cache = make(map[string]*cacheEntry)
	l.mu.Unlock()
}

// History returns a copy of the load events recorded so far.
func (l *Loader) History() []LoadEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.history)
}

// CompareVersions loads name and summarizes how it differs from other content.
func (l *Loader) CompareVersions(name, other string) (Comparison, error) {
	tpl, err := l.Load(name)
	if err != nil {
		return Comparison{}, err
	}
	currentHash := contentHash([]byte(tpl.Content))
	otherHash := contentHash([]byte(other))
	return Comparison{
		Name:           name,
		CurrentVersion: tpl.Version(),
		HashesMatch:    currentHash == otherHash,
		CurrentHash:    currentHash,
		OtherHash:      otherHash,
		CurrentLength:  len(tpl.Content),
		OtherLength:    len(other),
	}, nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
