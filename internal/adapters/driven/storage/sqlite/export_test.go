package sqlite

import (
	"io/fs"

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlite/migrations"
)

func migrationsFS() fs.FS { return migrations.FS }
