// internal/repository/repository.go
package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gitlet/internal/config"
	gerrors "gitlet/internal/errors"
	"gitlet/internal/graph"
	"gitlet/internal/object"
	objstore "gitlet/internal/object/storage"
	refstore "gitlet/internal/refs/storage"
	"gitlet/internal/safe"
	"gitlet/internal/staging"
	"gitlet/internal/storage"
	"gitlet/internal/workspace"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Layout inside the metadata directory.
const (
	dbDir      = "db"
	objectsDir = "objects"
	configFile = "config"
)

// Repository threads every component of one repository. There is no
// package-level state: two handles never share anything.
type Repository struct {
	Root string

	db      *badger.DB
	objects *objstore.Store
	graph   *graph.Graph
	staging *staging.Area
	refs    *refstore.Store
	area    workspace.Area
	logger  *zap.Logger

	defaultBranch string
	now           func() time.Time
	ownsDB        bool
}

// Deps wires a repository from already-open parts. Tests pass an in-memory
// badger and a workspace.Memory.
type Deps struct {
	Root          string
	DB            *badger.DB
	Safe          *safe.Safe
	Area          workspace.Area
	Logger        *zap.Logger
	DefaultBranch string
	// Clock stamps new commits. Defaults to time.Now.
	Clock func() time.Time
}

func New(deps Deps) (*Repository, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if deps.Safe == nil {
		return nil, fmt.Errorf("object safe cannot be nil")
	}
	if deps.Area == nil {
		return nil, fmt.Errorf("working area cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.DefaultBranch == "" {
		deps.DefaultBranch = config.Default().DefaultBranch
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	objects := objstore.NewStore(deps.Safe, deps.Logger.Named("objects"))
	return &Repository{
		Root:          deps.Root,
		db:            deps.DB,
		objects:       objects,
		graph:         graph.New(objects),
		staging:       staging.NewArea(deps.DB, deps.Logger.Named("staging")),
		refs:          refstore.NewStore(deps.DB, deps.Logger.Named("refs")),
		area:          deps.Area,
		logger:        deps.Logger,
		defaultBranch: deps.DefaultBranch,
		now:           deps.Clock,
	}, nil
}

// Initialize stores the initial commit and creates the default branch on
// it. It fails on a repository that already has a HEAD.
func (r *Repository) Initialize() error {
	if _, err := r.refs.Head(); err == nil {
		return gerrors.RepositoryExists()
	}

	initial := object.InitialCommit()
	if _, err := r.objects.Put(initial); err != nil {
		return fmt.Errorf("storing initial commit: %w", err)
	}
	if err := r.refs.Init(r.defaultBranch, initial.ID()); err != nil {
		return err
	}

	r.logger.Info("repository initialized",
		zap.String("root", r.Root),
		zap.String("branch", r.defaultBranch))
	return nil
}

// MetaPath is the metadata directory of the repository rooted at root.
func MetaPath(root string) string {
	return filepath.Join(root, workspace.MetaDir)
}

// Init creates a repository in root. cfg may be nil for defaults.
func Init(root string, cfg *config.Config, logger *zap.Logger) (*Repository, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	meta := MetaPath(root)
	if _, err := os.Stat(meta); err == nil {
		return nil, gerrors.RepositoryExists()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking %s: %w", meta, err)
	}

	for _, dir := range []string{meta, filepath.Join(meta, objectsDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := config.Save(filepath.Join(meta, configFile), cfg); err != nil {
		return nil, err
	}

	r, err := open(root, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := r.Initialize(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Open loads the repository rooted at root. A nil cfg is read from the
// repository's own config file.
func Open(root string, cfg *config.Config, logger *zap.Logger) (*Repository, error) {
	meta := MetaPath(root)
	if info, err := os.Stat(meta); err != nil || !info.IsDir() {
		return nil, gerrors.RepositoryNotFound()
	}

	if cfg == nil {
		loaded, err := config.LoadOrDefault(filepath.Join(meta, configFile))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return open(root, cfg, logger)
}

func open(root string, cfg *config.Config, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	meta := MetaPath(root)

	db, err := storage.Open(filepath.Join(meta, dbDir))
	if err != nil {
		return nil, err
	}

	vault, err := safe.New(db, safe.Options{
		Root:      filepath.Join(meta, objectsDir),
		CacheSize: cfg.Storage.CacheSize,
		Compression: safe.CompressionOptions{
			MinSize: cfg.Storage.Compression.MinSize,
			Level:   cfg.Storage.Compression.Level,
		},
		Logger: logger.Named("safe"),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing object safe: %w", err)
	}

	area, err := workspace.NewLocal(root)
	if err != nil {
		db.Close()
		return nil, err
	}

	r, err := New(Deps{
		Root:          area.Root,
		DB:            db,
		Safe:          vault,
		Area:          area,
		Logger:        logger,
		DefaultBranch: cfg.DefaultBranch,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	r.ownsDB = true
	return r, nil
}

// Close releases the database when the repository opened it itself.
func (r *Repository) Close() error {
	if r == nil || !r.ownsDB {
		return nil
	}
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Head returns the commit the current branch points at.
func (r *Repository) Head() (*object.Commit, error) {
	d, err := r.refs.Head()
	if err != nil {
		return nil, err
	}
	return r.objects.GetCommit(d)
}

func (r *Repository) CurrentBranch() (string, error) {
	return r.refs.Current()
}

// ResolveCommit expands an abbreviated commit id.
func (r *Repository) ResolveCommit(prefix string) (*object.Commit, error) {
	d, err := r.objects.ResolveCommit(prefix)
	if err != nil {
		return nil, err
	}
	return r.objects.GetCommit(d)
}

// Blob loads a stored file version.
func (r *Repository) Blob(d object.Digest) (*object.Blob, error) {
	return r.objects.GetBlob(d)
}

// VerifyReport lists what an integrity sweep found wrong.
type VerifyReport struct {
	Commits  int
	Corrupt  []object.Digest
	Dangling []string // branches whose head is missing or unreadable
}

func (r VerifyReport) OK() bool {
	return len(r.Corrupt) == 0 && len(r.Dangling) == 0
}

// Verify re-checks every stored object and every branch head.
func (r *Repository) Verify() (*VerifyReport, error) {
	corrupt, err := r.objects.Verify()
	if err != nil {
		return nil, fmt.Errorf("verifying objects: %w", err)
	}
	commits, err := r.objects.Commits()
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{Commits: len(commits), Corrupt: corrupt}

	branches, err := r.refs.Branches()
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if _, err := r.objects.GetCommit(b.Head); err != nil {
			report.Dangling = append(report.Dangling, b.Name)
		}
	}

	r.logger.Info("verify finished",
		zap.Int("commits", report.Commits),
		zap.Int("corrupt", len(report.Corrupt)),
		zap.Int("dangling", len(report.Dangling)))
	return report, nil
}
