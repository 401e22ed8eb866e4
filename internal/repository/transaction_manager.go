package repository

import (
	"context"
	"fmt"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type txKey struct{}

func txFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx, ok && tx != nil
}

// GetExecutor returns the transaction carried by ctx, or db when there is none.
// Repositories route every query through it.
func GetExecutor(ctx context.Context, db DBTX) DBTX {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}

// TransactionManagerAdapter implements domain.TransactionManager on sqlx.
type TransactionManagerAdapter struct {
	db *sqlx.DB
}

func NewTransactionManagerAdapter(db *sqlx.DB) domain.TransactionManager {
	return &TransactionManagerAdapter{db: db}
}

// WithTransaction runs fn in a transaction. Nested calls join the outer
// transaction and commit or roll back with it.
func (tma *TransactionManagerAdapter) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := tma.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		p := recover()
		switch {
		case p != nil:
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Get().Error("Rollback after panic failed", zap.Error(rbErr))
			}
			panic(p)
		case err != nil:
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("rollback failed: %v (cause: %w)", rbErr, err)
			}
		default:
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("commit transaction: %w", cErr)
			}
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}
