package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/southeastwestnorth/tanzimapp/internal/bank"
)

// StoredBank is a registered question bank. The raw source bytes are kept,
// not parsed records: every session creation re-parses (and may re-permute)
// so no load is ever served from a cache.
type StoredBank struct {
	Name       string
	Format     bank.Format
	Source     []byte
	Questions  int
	Dropped    int
	UploadedAt time.Time
}

// BankInfo is the client-facing view of a registered bank.
type BankInfo struct {
	Name       string    `json:"name"`
	Format     string    `json:"format"`
	Questions  int       `json:"questions"`
	Dropped    int       `json:"dropped_rows"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// BankStore is the in-memory registry of named question banks.
type BankStore struct {
	mu    sync.RWMutex
	banks map[string]*StoredBank
	log   zerolog.Logger
}

// NewBankStore creates an empty registry.
func NewBankStore(log zerolog.Logger) *BankStore {
	return &BankStore{
		banks: make(map[string]*StoredBank),
		log:   log.With().Str("component", "bank_store").Logger(),
	}
}

// LoadDir registers every *.csv and *.xlsx file found in dir, keyed by file
// name without extension. Unusable files are skipped with a warning, not a
// startup failure. Returns the number of banks registered.
func (s *BankStore) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read bank dir: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := bank.FormatForPath(entry.Name())
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		source, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable bank file")
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, err := s.Put(name, format, source); err != nil {
			s.log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unusable bank file")
			continue
		}
		loaded++
	}
	return loaded, nil
}

// Put registers (or replaces) a bank after a trial parse. The trial parse
// rejects unusable sources at registration time so session creation can
// assume the stored bytes load cleanly.
func (s *BankStore) Put(name string, format bank.Format, source []byte) (*StoredBank, error) {
	parsed, err := bank.Load(bytes.NewReader(source), format, bank.Options{})
	if err != nil {
		return nil, err
	}

	if mismatches := bank.Validate(parsed); len(mismatches) > 0 {
		// Advisory only: the bank stays usable, but authors should know.
		s.log.Warn().
			Str("bank", name).
			Int("mismatches", len(mismatches)).
			Msg("Bank has answer keys that match no option")
	}

	stored := &StoredBank{
		Name:       name,
		Format:     format,
		Source:     source,
		Questions:  len(parsed.Questions),
		Dropped:    parsed.Dropped,
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	s.banks[name] = stored
	s.mu.Unlock()

	s.log.Info().
		Str("bank", name).
		Int("questions", stored.Questions).
		Int("dropped_rows", stored.Dropped).
		Msg("Bank registered")

	return stored, nil
}

// Open parses a fresh Bank from the stored source bytes. Each call re-reads
// and, when opts.Shuffle is set, re-permutes.
func (s *BankStore) Open(name string, opts bank.Options) (*bank.Bank, error) {
	s.mu.RLock()
	stored, ok := s.banks[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("question bank %q is not registered", name)
	}
	return bank.Load(bytes.NewReader(stored.Source), stored.Format, opts)
}

// Get returns the stored bank metadata.
func (s *BankStore) Get(name string) (*StoredBank, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.banks[name]
	return b, ok
}

// List returns all registered banks sorted by name.
func (s *BankStore) List() []BankInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]BankInfo, 0, len(s.banks))
	for _, b := range s.banks {
		infos = append(infos, BankInfo{
			Name:       b.Name,
			Format:     string(b.Format),
			Questions:  b.Questions,
			Dropped:    b.Dropped,
			UploadedAt: b.UploadedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ShuffleSource returns a fresh time-seeded random source for permuted loads.
func ShuffleSource() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
