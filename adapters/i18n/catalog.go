// Package i18n provides localized descriptor bundles loaded from YAML files.
//
// A bundle directory holds one file per locale, named after its BCP 47 tag
// (en.yaml, fr.yaml, pt-BR.yaml). Each file is a flat map of descriptor
// keys to text. Lookups miss softly: an unknown key or an empty catalog
// reports false, never an error.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/artpar/rpcgate/ports"
)

// Catalog resolves descriptor text by locale with hot reload support.
type Catalog struct {
	mu       sync.RWMutex
	dir      string
	tags     []language.Tag
	matcher  language.Matcher
	tables   map[string]map[string]string // by tag string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onReload []func(error)
	stopCh   chan struct{}
}

// NewCatalog loads all locale files from dir.
func NewCatalog(dir string, logger zerolog.Logger) (*Catalog, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	c := &Catalog{
		dir:    absDir,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup returns the text for key in the best match for locale.
func (c *Catalog) Lookup(locale language.Tag, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.tags) == 0 {
		return "", false
	}

	// Matcher falls back to the first registered tag, mirroring how a
	// default bundle serves unmatched locales.
	_, idx, _ := c.matcher.Match(locale)
	table := c.tables[c.tags[idx].String()]
	text, ok := table[key]
	return text, ok
}

// Locales returns the loaded locale tags, sorted by string form.
func (c *Catalog) Locales() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]language.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Reload re-reads all locale files from disk.
// Returns error if loading fails (keeps old tables).
func (c *Catalog) Reload() error {
	err := c.load()
	for _, fn := range c.onReload {
		fn(err)
	}
	if err != nil {
		c.logger.Error().Err(err).Msg("bundle reload failed, keeping old tables")
		return err
	}
	c.logger.Info().Str("dir", c.dir).Msg("descriptor bundles reloaded")
	return nil
}

// OnReload registers a callback invoked after every reload attempt.
func (c *Catalog) OnReload(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReload = append(c.onReload, fn)
}

// Watch starts watching the bundle directory for changes.
// Changes to .yaml files trigger automatic reload.
func (c *Catalog) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	c.watcher = watcher

	if err := watcher.Add(c.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go c.watchLoop()

	c.logger.Info().Str("dir", c.dir).Msg("watching bundle directory for changes")
	return nil
}

// Stop stops watching for file changes.
func (c *Catalog) Stop() {
	close(c.stopCh)
	if c.watcher != nil {
		c.watcher.Close()
	}
}

func (c *Catalog) watchLoop() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}

			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}

			// React to write, create, or remove (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
				c.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("bundle file changed")

				if err := c.Reload(); err != nil {
					c.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error().Err(err).Msg("file watcher error")

		case <-c.stopCh:
			return
		}
	}
}

func (c *Catalog) load() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read bundle dir: %w", err)
	}

	tables := make(map[string]map[string]string)
	var tags []language.Tag
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		tag, err := language.Parse(strings.TrimSuffix(name, ext))
		if err != nil {
			return fmt.Errorf("bundle file %s: bad locale tag: %w", name, err)
		}

		data, err := os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			return fmt.Errorf("read bundle %s: %w", name, err)
		}

		table := make(map[string]string)
		if err := yaml.Unmarshal(data, &table); err != nil {
			return fmt.Errorf("parse bundle %s: %w", name, err)
		}

		tables[tag.String()] = table
		tags = append(tags, tag)
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].String() < tags[j].String()
	})

	// Prefer English as the fallback bundle when present.
	for i, tag := range tags {
		if tag == language.English {
			tags[0], tags[i] = tags[i], tags[0]
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags = tags
	c.tables = tables
	if len(tags) > 0 {
		c.matcher = language.NewMatcher(tags)
	} else {
		c.matcher = nil
	}
	return nil
}

// Ensure interface compliance.
var _ ports.Bundle = (*Catalog)(nil)
