// Package pool narrows pgx connection pools to what repositories use.
package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Queryer sends SQL. Both Conn and Tx are Queryer.
type Queryer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Begin starts a transaction.
type Begin interface {
	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is a connection acquired from Pool. Release it after use.
type Conn interface {
	Queryer
	Begin
	Release()
}

type Pool interface {
	Begin
	Acquire(ctx context.Context) (Conn, error)
	Close()
}

// pgx.Tx satisfies Tx as it is.
var _ Tx = pgx.Tx(nil)

type conn struct {
	*pgxpool.Conn
}

func (c conn) Begin(ctx context.Context) (Tx, error) {
	return c.Conn.Begin(ctx)
}

type pgxPool struct {
	base *pgxpool.Pool
}

// Wrap a pgxpool.Pool.
func Wrap(p *pgxpool.Pool) Pool {
	return &pgxPool{base: p}
}

func (p *pgxPool) Begin(ctx context.Context) (Tx, error) {
	return p.base.Begin(ctx)
}

func (p *pgxPool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.base.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn{c}, nil
}

func (p *pgxPool) Close() {
	p.base.Close()
}

// InTx runs f in a transaction begun from b.
//
// The transaction is committed when f returns nil, and rolled back otherwise.
func InTx(ctx context.Context, b Begin, f func(Tx) error) error {
	tx, err := b.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := f(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
