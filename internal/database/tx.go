package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// WithTx はトランザクションスコープ内でfnを実行する。
// fnがエラーを返した場合、またはpanicした場合はロールバックし、
// 正常終了した場合のみコミットする。
// ロールバック自体の失敗は元のエラーを上書きせず、ログに記録するのみ。
// 呼び出し側のコンテキストがキャンセルされた場合もロールバックされる。
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// コミット済みの場合のRollbackはsql.ErrTxDoneを返すだけで無害。
	// panicや早期returnを含むすべての経路でトランザクションを確実に終了させる。
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("transaction rollback failed",
				slog.String("error", rbErr.Error()),
			)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
