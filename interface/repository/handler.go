package repository

import (
	"database/sql"

	"github.com/behrang/sqlbatch"
)

var (
	// BatchOptionNormal is used for every state-mutating batch; the single
	// writer upstream already serializes them.
	BatchOptionNormal = sql.TxOptions{
		ReadOnly:  false,
		Isolation: sql.LevelReadCommitted,
	}

	BatchOptionNormalReadOnly = sql.TxOptions{
		ReadOnly:  true,
		Isolation: sql.LevelReadCommitted,
	}
)

// BatchHandler executes a batch of SQL commands in one transaction.
type BatchHandler interface {
	Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error)
}
