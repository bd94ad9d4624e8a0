// Package pgclient talks SQL to a running pg_venv server over its derived
// port, for status reporting.
package pgclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/user"
	"strings"
	"time"

	"github.com/lib/pq"
)

// DefaultTimeout bounds a whole Ping, connection included.
const DefaultTimeout = 3 * time.Second

// Info is what a reachable server reports about itself.
type Info struct {
	ServerVersion string
	Database      string
	User          string
}

// DSN returns the lib/pq keyword/value connection string for the server on
// localhost:port. initdb makes the invoking OS user the superuser, so that
// is the default role.
func DSN(port int, role string) string {
	if role == "" {
		role = currentUser()
	}
	parts := []string{
		"host=localhost",
		fmt.Sprintf("port=%d", port),
		"dbname=postgres",
		"user=" + quoteValue(role),
		"sslmode=disable",
		fmt.Sprintf("connect_timeout=%d", int(DefaultTimeout/time.Second)),
	}
	return strings.Join(parts, " ")
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "postgres"
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Ping connects to the server on port and reads its version.
func Ping(ctx context.Context, port int) (Info, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	db, err := sql.Open("postgres", DSN(port, ""))
	if err != nil {
		return Info{}, err
	}
	defer db.Close()

	var info Info
	err = db.QueryRowContext(ctx,
		`SELECT current_setting('server_version'), current_database(), current_user`,
	).Scan(&info.ServerVersion, &info.Database, &info.User)
	if err != nil {
		return Info{}, describe(err)
	}
	return info, nil
}

func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("server answered %s (%s): %s", pqErr.Code, pqErr.Code.Name(), pqErr.Message)
	}
	return err
}
