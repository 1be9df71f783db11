package database

import "fmt"

// UseInMemory points DB at a fresh, migrated in-memory SQLite database.
// The name isolates databases from each other within one process.
func UseInMemory(name string) error {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := Open("sqlite", dsn)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// Shared-cache SQLite locks whole tables; one connection keeps transactions serial.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return err
	}
	DB = db
	return nil
}
