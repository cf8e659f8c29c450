// Settings DB holds the few values the dashboard keeps between restarts:
// the telemetry channel, the selected grid type and the alert list.
// Readings themselves are never stored here.
package settingsdb

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"sync"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/NotCoffee418/microgrid_monitor/pkg/pathing"

	_ "modernc.org/sqlite"
)

var (
	db   *sql.DB
	once sync.Once
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// InitializeDatabase must be called manually on startup.
// Returns a store over the shared database.
func InitializeDatabase() *Store {
	db := GetDB()
	if _, err := db.Exec("SELECT 1;"); err != nil {
		log.Printf("Warning: Could not create DB: %v", err)
	}
	migrate(db)
	return NewStore(db)
}

func GetDB() *sql.DB {
	once.Do(func() {
		var err error
		db, err = openDB(pathing.GetSettingsDbPath())
		if err != nil {
			log.Fatal(err)
		}
	})
	return db
}

// Open opens and migrates a database at path, independent of the shared one.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	migrate(db)
	return NewStore(db), nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping settings db: %w", err)
	}
	return db, nil
}

func migrate(db *sql.DB) {
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)
}
