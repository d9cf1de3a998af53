// Everything that touches a SQL database from the Go side. The drivers are
// pulled in here and nowhere else, so this is the file to edit if you want
// to support another flavor of database.
package database

import (
	"database/sql"
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"

	_ "github.com/go-sql-driver/mysql"    // MariaDB and MySQL
	_ "github.com/lib/pq"                 // Postgres
	_ "github.com/microsoft/go-mssqldb"   // SQL Server
	_ "github.com/nakagami/firebirdsql"   // Firebird
	_ "github.com/sijms/go-ora"           // Oracle
	_ "modernc.org/sqlite"                // SQLite
)

// The names on the left are what the user writes, the names on the right
// are what the sql package wants to hear.
var drivers = map[string]string{
	"Firebird SQL": "firebirdsql",
	"MariaDB":      "mysql",
	"MySQL":        "mysql",
	"Oracle":       "oracle",
	"Postgres":     "postgres",
	"SQL Server":   "sqlserver",
	"SQLite":       "sqlite",
}

func IsDriver(name string) bool {
	_, ok := drivers[name]
	return ok
}

func GetSortedDrivers() []string {
	names := []string{}
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConnectionString builds the dsn the named driver wants out of its parts.
// The drivers disagree about the shape, so the shapes live here with the
// drivers. SQLite ignores everything but the database, which is a filepath.
func ConnectionString(name, host string, port int, db, user, password string) string {
	switch drivers[name] {
	case "postgres":
		return fmt.Sprintf("host=%v port=%v dbname=%v user=%v password=%v sslmode=disable",
			host, port, db, user, password)
	case "mysql":
		return fmt.Sprintf("%v:%v@tcp(%v:%v)/%v", user, password, host, port, db)
	case "sqlserver":
		return fmt.Sprintf("server=%v;port=%v;database=%v;user id=%v;password=%v",
			host, port, db, user, password)
	case "firebirdsql":
		return fmt.Sprintf("%v:%v@%v:%v/%v", user, password, host, port, db)
	case "oracle":
		return fmt.Sprintf("oracle://%v:%v@%v:%v/%v", user, password, host, port, db)
	default:
		return db
	}
}

// Open dials the database and pings it, so a bad dsn fails here rather
// than on the first query.
func Open(name, dsn string) (*sql.DB, error) {
	db, err := sql.Open(drivers[name], dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
