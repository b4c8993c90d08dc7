// Package cardledger is a personal and small-business finance ledger with
// credit-card invoice cycles. A workspace is a directory holding a
// cardledger.yaml config, a data/ directory of CSV snapshot files and a
// logs/ directory with the activity log, optionally versioned with git.
package cardledger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardledger/cardledger/internal/clock"
	"github.com/cardledger/cardledger/internal/config"
	"github.com/cardledger/cardledger/internal/gitops"
	"github.com/cardledger/cardledger/internal/ledger"
	"github.com/cardledger/cardledger/internal/logger"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/recurrence"
	"github.com/cardledger/cardledger/internal/storage"
)

// Workspace is an opened ledger directory.
type Workspace struct {
	Root   string
	Config *config.Config
	Log    zerolog.Logger
	Ledger *Store
}

// Init lays out a new workspace in dir: config, an empty snapshot and the
// logs directory. With git.auto_commit on (the default) dir becomes a git
// repository with an initial commit.
func Init(dir, name string) (*config.Config, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return nil, fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(name)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	for _, d := range []string{cfg.Storage.DataDir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, err
	}

	files := storage.NewFileStore(storage.Options{Root: dir, DataDir: cfg.Storage.DataDir})
	if err := files.Save(model.Snapshot{}, ledger.Change{Action: "init", Kind: "ledger", Detail: name}); err != nil {
		return nil, fmt.Errorf("writing empty ledger: %w", err)
	}

	if cfg.Git.AutoCommit {
		repo := gitRepo(dir, cfg)
		if !repo.IsRepo() {
			if err := repo.Init(); err != nil {
				return nil, err
			}
		}
		if _, err := repo.CommitAll("init: Initialize " + name); err != nil {
			return nil, fmt.Errorf("initial commit: %w", err)
		}
	}
	return cfg, nil
}

// Open loads the workspace in dir and wires its ledger to the files on disk.
func Open(dir string) (*Workspace, error) {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	log = log.With().Str("ledger", cfg.Ledger.Name).Logger()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	opts := storage.Options{Root: dir, DataDir: cfg.Storage.DataDir, Logger: &log}
	if cfg.Git.AutoCommit {
		if repo := gitRepo(dir, cfg); repo.IsRepo() {
			opts.Git = repo
		} else {
			log.Warn().Str("dir", dir).Msg("git.auto_commit is on but the workspace is not a git repository")
		}
	}
	files := storage.NewFileStore(opts)

	snap, err := files.Load()
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	store := ledger.NewStore(snap, ledger.Options{
		Persister: files,
		Clock:     clock.System{Location: loc},
		Horizon: recurrence.Horizon{
			Bounded:  cfg.Recurrence.BoundedCount,
			Infinite: cfg.Recurrence.InfiniteCount,
		},
		Logger: &log,
	})

	log.Debug().
		Int("transactions", len(snap.Transactions)).
		Int("cards", len(snap.Cards)).
		Msg("workspace opened")

	return &Workspace{Root: dir, Config: cfg, Log: log, Ledger: store}, nil
}

// DefaultContext returns the context configured for new entries.
func (w *Workspace) DefaultContext() Context {
	if w.Config.Ledger.DefaultContext == "" {
		return ContextPersonal
	}
	return Context(w.Config.Ledger.DefaultContext)
}

// Overview returns the month overview for the default context.
func (w *Workspace) Overview(year int, month time.Month) Overview {
	return w.Ledger.Overview(w.DefaultContext(), year, month)
}

func gitRepo(dir string, cfg *config.Config) *gitops.Repo {
	return &gitops.Repo{Dir: dir, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
}
