package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/vertica/vertica-sql-go"

	"github.com/radcom-pso/vdrift/utils"
)

var (
	db     *sql.DB
	dbOnce sync.Once
	dbErr  error
)

// Get returns a singleton connection pool to the target Vertica instance.
// The DSN comes from VERTICA_DSN (environment or .env file).
func Get() (*sql.DB, error) {
	dbOnce.Do(func() {
		utils.LoadEnv()
		dsn := os.Getenv("VERTICA_DSN")
		if dsn == "" {
			dbErr = fmt.Errorf("VERTICA_DSN not set in environment")
			return
		}

		db, dbErr = sql.Open("vertica", dsn)
		if dbErr != nil {
			dbErr = fmt.Errorf("unable to open connection pool: %v", dbErr)
			return
		}

		// Test the connection
		if err := db.PingContext(context.Background()); err != nil {
			db.Close()
			db = nil
			dbErr = fmt.Errorf("unable to ping database: %v", err)
			return
		}
	})

	return db, dbErr
}

// Close closes the connection pool (should be called on application shutdown)
func Close() {
	if db != nil {
		db.Close()
	}
}
