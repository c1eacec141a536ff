package mocks

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

// txDriver is a database/sql driver whose connections only support
// transactions, and those transactions are no-ops. It lets services that
// wrap their store calls in RunInTransaction be tested with in-memory
// stores: BeginTx, Commit and Rollback all succeed without a database.
type txDriver struct{}

func (txDriver) Open(string) (driver.Conn, error) { return txConn{}, nil }

type txConn struct{}

func (txConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("mocks: statements are not supported")
}
func (txConn) Close() error              { return nil }
func (txConn) Begin() (driver.Tx, error) { return txTx{}, nil }

type txTx struct{}

func (txTx) Commit() error   { return nil }
func (txTx) Rollback() error { return nil }

var registerTxDriver sync.Once

// NewTxDB returns a *sql.DB backed by txDriver. Every transaction it
// begins commits and rolls back successfully; any attempt to run a query
// through it fails.
func NewTxDB() *sql.DB {
	registerTxDriver.Do(func() {
		sql.Register("mocktx", txDriver{})
	})
	db, err := sql.Open("mocktx", "")
	if err != nil {
		panic(err)
	}
	return db
}
