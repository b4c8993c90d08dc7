package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardledger/cardledger/internal/activity"
	"github.com/cardledger/cardledger/internal/gitops"
	"github.com/cardledger/cardledger/internal/ledger"
	"github.com/cardledger/cardledger/internal/model"
)

// File names inside the data directory.
const (
	TransactionsFile = "transactions.csv"
	CardsFile        = "cards.csv"
	AccountsFile     = "accounts.csv"
	GoalsFile        = "goals.csv"
)

// Options configures a FileStore.
type Options struct {
	Root    string       // workspace root; the activity log lives under it
	DataDir string       // snapshot directory, relative to Root unless absolute
	Git     *gitops.Repo // nil disables commits
	Logger  *zerolog.Logger
	Now     func() time.Time
}

// FileStore keeps a snapshot as CSV files and implements ledger.Persister.
type FileStore struct {
	root    string
	dataDir string
	git     *gitops.Repo
	log     zerolog.Logger
	now     func() time.Time
}

var _ ledger.Persister = (*FileStore)(nil)

// NewFileStore creates a FileStore. The data directory is created on first save.
func NewFileStore(opts Options) *FileStore {
	dataDir := opts.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(opts.Root, dataDir)
	}
	fs := &FileStore{
		root:    opts.Root,
		dataDir: dataDir,
		git:     opts.Git,
		log:     zerolog.Nop(),
		now:     opts.Now,
	}
	if opts.Logger != nil {
		fs.log = *opts.Logger
	}
	if fs.now == nil {
		fs.now = time.Now
	}
	return fs
}

// DataDir returns the resolved snapshot directory.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// Load reads the snapshot. Missing files load as empty collections.
func (fs *FileStore) Load() (model.Snapshot, error) {
	var snap model.Snapshot
	var err error

	if snap.Transactions, err = readFile(fs.path(TransactionsFile), ReadTransactions); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Cards, err = readFile(fs.path(CardsFile), ReadCards); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Accounts, err = readFile(fs.path(AccountsFile), ReadAccounts); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Goals, err = readFile(fs.path(GoalsFile), ReadGoals); err != nil {
		return model.Snapshot{}, err
	}

	fs.log.Debug().
		Str("dir", fs.dataDir).
		Int("transactions", len(snap.Transactions)).
		Int("cards", len(snap.Cards)).
		Int("accounts", len(snap.Accounts)).
		Int("goals", len(snap.Goals)).
		Msg("snapshot loaded")
	return snap, nil
}

// Save writes every file of snap. All files are written to temporary names
// first and renamed into place only once every write succeeded. Each rename
// is atomic; a rename failing partway can leave a mix of old and new files. Git commit
// and activity log failures are logged but do not fail the save, since the
// snapshot itself is already durable at that point.
func (fs *FileStore) Save(snap model.Snapshot, change ledger.Change) error {
	if err := os.MkdirAll(fs.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	writes := []struct {
		name  string
		write func(io.Writer) error
	}{
		{TransactionsFile, func(w io.Writer) error { return WriteTransactions(w, snap.Transactions) }},
		{CardsFile, func(w io.Writer) error { return WriteCards(w, snap.Cards) }},
		{AccountsFile, func(w io.Writer) error { return WriteAccounts(w, snap.Accounts) }},
		{GoalsFile, func(w io.Writer) error { return WriteGoals(w, snap.Goals) }},
	}

	temps := make([]string, 0, len(writes))
	cleanup := func() {
		for _, tmp := range temps {
			os.Remove(tmp)
		}
	}
	for _, w := range writes {
		tmp, err := writeTemp(fs.dataDir, w.name, w.write)
		if err != nil {
			cleanup()
			return fmt.Errorf("writing %s: %w", w.name, err)
		}
		temps = append(temps, tmp)
	}
	for i, w := range writes {
		if err := os.Rename(temps[i], fs.path(w.name)); err != nil {
			cleanup()
			return fmt.Errorf("replacing %s: %w", w.name, err)
		}
	}

	entry := activity.Entry{
		Timestamp: fs.now().UTC(),
		Action:    change.Action,
		Kind:      string(change.Kind),
		IDs:       change.IDs,
		Details:   change.Detail,
	}
	if fs.git != nil {
		hash, err := fs.git.CommitAll(commitMessage(change))
		if err != nil {
			fs.log.Warn().Err(err).Str("action", change.Action).Msg("git commit failed")
		}
		entry.CommitHash = hash
	}
	if err := activity.Append(fs.root, []activity.Entry{entry}); err != nil {
		fs.log.Warn().Err(err).Msg("activity log append failed")
	}
	return nil
}

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dataDir, name)
}

func commitMessage(c ledger.Change) string {
	msg := fmt.Sprintf("%s %s", c.Action, c.Kind)
	if c.Detail != "" {
		msg += ": " + c.Detail
	}
	return msg
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return read(f)
}

func writeTemp(dir, name string, write func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
