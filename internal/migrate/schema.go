package migrate

import (
	"context"
	"database/sql"
	"geo-registry/internal/logger"
)

// 背景：批量导入源表；首次运行自动创建，便于外部流程直接写入后由登记表启动时读取
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；登记表本身只读这些表，从不回写
var stmts = []string{
	`CREATE TABLE IF NOT EXISTS reg_places (
            id BIGINT PRIMARY KEY,
            name TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT 'OTHER',
            x INT NOT NULL,
            y INT NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS reg_areas (
            id BIGINT PRIMARY KEY,
            name TEXT NOT NULL,
            coords JSONB NOT NULL DEFAULT '[]'::jsonb
        )`,
	`CREATE TABLE IF NOT EXISTS reg_area_links (
            child_id BIGINT PRIMARY KEY REFERENCES reg_areas(id),
            parent_id BIGINT NOT NULL REFERENCES reg_areas(id),
            seq SERIAL
        )`,
	`CREATE INDEX IF NOT EXISTS idx_reg_area_links_parent ON reg_area_links(parent_id, seq)`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
