package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// CreateDatabase は管理用接続でデータベースを新規作成する。
// adminURLはデータベース名を含まない（またはメンテナンス用DBを指す）接続URLを指定する。
func CreateDatabase(ctx context.Context, adminURL, name string) error {
	admin, err := Open(adminURL)
	if err != nil {
		return err
	}
	defer admin.Close()

	// CREATE DATABASEはプレースホルダを受け付けないため識別子をクォートする
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database %q: %w", name, err)
	}

	return nil
}

// Provision はデータベースを作成し、全マイグレーションを適用した接続プールを返す。
// いずれかのステップが失敗した場合は途中まで作成したリソースを回収せずにエラーを返す。
func Provision(ctx context.Context, adminURL, databaseURL, name string) (*sql.DB, error) {
	if err := CreateDatabase(ctx, adminURL, name); err != nil {
		return nil, err
	}

	db, err := Open(databaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %q: %w", name, err)
	}

	if err := RunMigrations(databaseURL); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
