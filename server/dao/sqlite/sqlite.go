// Package sqlite provides a persistent, single-file ExecutionRepository
// using a pure-Go sqlite driver so liposerver never needs cgo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/hnkNkm/Lipona/server/dao"
)

// ExecutionsRepository is a dao.ExecutionRepository backed by a sqlite file.
type ExecutionsRepository struct {
	dbFilename string
	db         *sql.DB
}

// NewExecutionsRepository opens (creating if necessary) the sqlite file at
// path and ensures its schema exists.
func NewExecutionsRepository(path string) (*ExecutionsRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapDBError(err)
	}

	repo := &ExecutionsRepository{dbFilename: path, db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (repo *ExecutionsRepository) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS executions (
		id TEXT NOT NULL PRIMARY KEY,
		source TEXT NOT NULL,
		stdout TEXT NOT NULL,
		result TEXT NOT NULL,
		err_msg TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *ExecutionsRepository) Create(ctx context.Context, exec dao.Execution) (dao.Execution, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Execution{}, fmt.Errorf("could not generate ID: %w", err)
	}
	exec.ID = newUUID
	exec.Created = time.Now()

	stmt, err := repo.db.Prepare(`INSERT INTO executions (id, source, stdout, result, err_msg, created) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Execution{}, wrapDBError(err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(exec.ID),
		exec.Source,
		exec.Stdout,
		exec.Result,
		exec.ErrMsg,
		convertToDB_Time(exec.Created),
	)
	if err != nil {
		return dao.Execution{}, wrapDBError(err)
	}

	return exec, nil
}

func (repo *ExecutionsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Execution, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, source, stdout, result, err_msg, created FROM executions WHERE id = ?;`,
		convertToDB_UUID(id),
	)

	var idStr string
	var createdInt int64
	var exec dao.Execution

	err := row.Scan(&idStr, &exec.Source, &exec.Stdout, &exec.Result, &exec.ErrMsg, &createdInt)
	if err != nil {
		return dao.Execution{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(idStr, &exec.ID); err != nil {
		return dao.Execution{}, err
	}
	convertFromDB_Time(createdInt, &exec.Created)

	return exec, nil
}

func (repo *ExecutionsRepository) Close() error {
	return wrapDBError(repo.db.Close())
}

// convertToDB_UUID converts a uuid.UUID to storage DB format on disk.
func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

// convertFromDB_UUID converts storage DB format value to a uuid.UUID and
// stores it at the address pointed to by target.
func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("decode stored id: %w", err)
	}
	*target = u
	return nil
}

// convertToDB_Time converts a time.Time to storage DB format on disk.
func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

// convertFromDB_Time converts storage DB format value to a time.Time and
// stores it at the address pointed to by target.
func convertFromDB_Time(i int64, target *time.Time) {
	*target = time.Unix(i, 0)
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
