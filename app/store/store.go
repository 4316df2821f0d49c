package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/veilletech/rss-engine/app/update"
)

// Document is the on-disk shape of one domain's collection, readable by the
// frontend as-is.
type Document struct {
	Updates     []update.Update `json:"updates"`
	LastUpdated time.Time       `json:"last_updated"`
	Total       int             `json:"total"`
}

// cacheFiles maps each domain to its cache document name. The names are part
// of the external contract; the frontend reads these files directly.
var cacheFiles = map[update.Domain]string{
	update.DomainWindows:  "rss-cache.json",
	update.DomainCloud:    "cloud-cache.json",
	update.DomainStarlink: "starlink-cache.json",
}

// Store owns one domain's persisted collection. All mutation goes through
// Merge under a single writer; Snapshot hands readers an isolated copy, so a
// query never observes a half-merged state.
type Store struct {
	domain update.Domain
	path   string

	mu          sync.RWMutex
	updates     []update.Update // ordered by published_date descending
	byID        map[string]int
	lastUpdated time.Time
}

// Open loads the domain's cache document. A missing file yields an empty
// collection; a corrupt file is an error so stale-but-valid state is never
// silently discarded.
func Open(domain update.Domain, dataDir string) (*Store, error) {
	fileName, ok := cacheFiles[domain]
	if !ok {
		return nil, fmt.Errorf("no cache file mapping for domain '%s'", domain)
	}

	s := &Store{
		domain: domain,
		path:   filepath.Join(dataDir, fileName),
		byID:   make(map[string]int),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse cache document %s: %w", s.path, err)
	}

	s.updates = doc.Updates
	s.lastUpdated = doc.LastUpdated

	// The document may have been written by hand or by another tool; readers
	// rely on recency order, so never trust the on-disk ordering.
	sort.SliceStable(s.updates, func(i, j int) bool {
		return s.updates[i].PublishedDate.After(s.updates[j].PublishedDate)
	})
	s.reindex()

	// Signatures are not serialized; recompute so the first merge after a
	// restart still detects unchanged records.
	for i := range s.updates {
		u := &s.updates[i]
		u.Signature = update.ComputeSignature(u.Title, u.Description, u.Link, u.PublishedDate)
	}

	return nil
}

func (s *Store) Domain() update.Domain {
	return s.domain
}

// Snapshot returns a copy of the collection, ordered by recency.
func (s *Store) Snapshot() []update.Update {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]update.Update, len(s.updates))
	copy(snapshot, s.updates)
	return snapshot
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.updates)
}

func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Merge folds a refresh batch into the collection: unseen ids are inserted,
// existing ids are replaced only when their content signature changed
// (updated_at bumped, created_at preserved), and everything else is left
// untouched. Re-running with an identical batch changes nothing. The merged
// document is persisted atomically before the in-memory state is swapped, so
// a failed write leaves prior committed state intact.
func (s *Store) Merge(batch []update.Update) (inserted, updated int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	merged := make([]update.Update, len(s.updates))
	copy(merged, s.updates)

	seen := make(map[string]bool, len(batch))
	for _, incoming := range batch {
		if seen[incoming.ID] {
			continue
		}
		seen[incoming.ID] = true

		idx, exists := s.byID[incoming.ID]
		if !exists {
			incoming.CreatedAt = now
			incoming.UpdatedAt = now
			merged = append(merged, incoming)
			inserted++
			continue
		}

		existing := merged[idx]
		if existing.Signature == incoming.Signature {
			continue
		}

		incoming.CreatedAt = existing.CreatedAt
		incoming.UpdatedAt = now
		merged[idx] = incoming
		updated++
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedDate.After(merged[j].PublishedDate)
	})

	doc := Document{
		Updates:     merged,
		LastUpdated: now,
		Total:       len(merged),
	}
	if err := s.persist(doc); err != nil {
		return 0, 0, err
	}

	s.updates = merged
	s.lastUpdated = now
	s.reindex()

	return inserted, updated, nil
}

// persist writes the document to a temp file in the target directory and
// renames it over the old one. Rename is atomic on POSIX filesystems, so a
// crash mid-write cannot corrupt previously committed state.
func (s *Store) persist(doc Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cache-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace cache document: %w", err)
	}

	return nil
}

func (s *Store) reindex() {
	s.byID = make(map[string]int, len(s.updates))
	for i, u := range s.updates {
		s.byID[u.ID] = i
	}
}
