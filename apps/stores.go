package apps

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/comment"
	"github.com/trezcool/academia/core/profile"
	"github.com/trezcool/academia/core/progress"
	"github.com/trezcool/academia/storage/database"
	"github.com/trezcool/academia/storage/database/dummy"
	"github.com/trezcool/academia/storage/database/sqlx"
)

const (
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

// Stores holds the repositories of the configured database engine.
type Stores struct {
	Profiles profile.Repository
	Catalog  catalog.Repository
	Progress progress.Repository
	Comments comment.Repository

	db *sqlx.DB // nil for the memory engine
}

// OpenStores opens the configured engine. Postgres databases are created and migrated first.
func OpenStores(ctx context.Context, conf *core.Config) (*Stores, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		return NewMemoryStores(dummydb.Open()), nil
	case EnginePostgres, "":
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(ctx, db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Stores{
			Profiles: sqlxrepos.NewProfileRepository(db),
			Catalog:  sqlxrepos.NewCatalogRepository(db),
			Progress: sqlxrepos.NewProgressRepository(db),
			Comments: sqlxrepos.NewCommentRepository(db),
			db:       db,
		}, nil
	default:
		return nil, NewArgumentError(fmt.Sprintf("unknown database engine %q", conf.Database.Engine))
	}
}

func NewMemoryStores(db *dummydb.DB) *Stores {
	return &Stores{
		Profiles: dummydb.NewProfileRepository(db),
		Catalog:  dummydb.NewCatalogRepository(db),
		Progress: dummydb.NewProgressRepository(db),
		Comments: dummydb.NewCommentRepository(db),
	}
}

// DB returns the SQL connection, or nil for the memory engine.
func (s *Stores) DB() *sqlx.DB {
	return s.db
}

func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
