package loader

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"geo-registry/internal/logger"
	"geo-registry/internal/registry"

	_ "github.com/lib/pq"
)

// 文档注释：从 PostgreSQL 导入源表加载
// 背景：外部流程维护 reg_places / reg_areas / reg_area_links，登记表启动时一次性读入内存，之后不再访问数据库。
// 约束：挂接按 (parent_id, seq) 顺序应用，使子区域顺序与写入顺序一致；coords 为 [[x,y],...] 形式的 JSONB。
func LoadPostgres(ctx context.Context, db *sql.DB, h *registry.Handle) (Summary, error) {
	b, err := readPostgres(ctx, db)
	if err != nil {
		return Summary{}, err
	}
	sum, err := Apply(h, "postgres", b)
	if err != nil {
		return sum, err
	}
	logger.L().Info("loader_pg_done", "places", sum.Places, "areas", sum.Areas, "links", sum.Links, "skipped", sum.Skipped)
	return sum, nil
}

func readPostgres(ctx context.Context, db *sql.DB) (Batch, error) {
	var out Batch
	rows, err := db.QueryContext(ctx, "SELECT id, name, category, x, y FROM reg_places ORDER BY id")
	if err != nil {
		return out, &LoadError{Source: "reg_places", Index: -1, Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var p PlaceRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.X, &p.Y); err != nil {
			return out, &LoadError{Source: "reg_places", Index: len(out.Places), Err: err}
		}
		out.Places = append(out.Places, p)
	}
	if err := rows.Err(); err != nil {
		return out, &LoadError{Source: "reg_places", Index: -1, Err: err}
	}

	arows, err := db.QueryContext(ctx, "SELECT id, name, coords FROM reg_areas ORDER BY id")
	if err != nil {
		return out, &LoadError{Source: "reg_areas", Index: -1, Err: err}
	}
	defer arows.Close()
	pos := map[int64]int{}
	for arows.Next() {
		var a AreaRecord
		var raw []byte
		if err := arows.Scan(&a.ID, &a.Name, &raw); err != nil {
			return out, &LoadError{Source: "reg_areas", Index: len(out.Areas), Err: err}
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &a.Coords); err != nil {
				return out, &LoadError{Source: "reg_areas", Index: len(out.Areas), Err: err}
			}
		}
		pos[a.ID] = len(out.Areas)
		out.Areas = append(out.Areas, a)
	}
	if err := arows.Err(); err != nil {
		return out, &LoadError{Source: "reg_areas", Index: -1, Err: err}
	}

	lrows, err := db.QueryContext(ctx, "SELECT child_id, parent_id FROM reg_area_links ORDER BY parent_id, seq")
	if err != nil {
		return out, &LoadError{Source: "reg_area_links", Index: -1, Err: err}
	}
	defer lrows.Close()
	// 按挂接顺序重排区域，Apply 依区域顺序执行挂接
	var linked []AreaRecord
	seen := map[int64]bool{}
	for lrows.Next() {
		var child, parent int64
		if err := lrows.Scan(&child, &parent); err != nil {
			return out, &LoadError{Source: "reg_area_links", Index: len(linked), Err: err}
		}
		i, ok := pos[child]
		if !ok || seen[child] {
			continue
		}
		a := out.Areas[i]
		a.Parent = &parent
		linked = append(linked, a)
		seen[child] = true
	}
	if err := lrows.Err(); err != nil {
		return out, &LoadError{Source: "reg_area_links", Index: -1, Err: err}
	}
	var rest []AreaRecord
	for _, a := range out.Areas {
		if !seen[a.ID] {
			rest = append(rest, a)
		}
	}
	out.Areas = append(rest, linked...)
	return out, nil
}

// 文档注释：将批次写入 PostgreSQL 源表
// 背景：单事务内以预编译语句 UPSERT 地点与区域，挂接按批次顺序写入，使 seq 与文件中的顺序一致。
// 约束：分类在写入前校验（与 Apply 同规则）；任一语句失败整体回滚；
// 父区域既不在批次中也不在库中的挂接、以及子区域已有父区域的挂接都计入 Skipped，与 Apply 一致。
func SeedPostgres(ctx context.Context, db *sql.DB, b Batch) (Summary, error) {
	var sum Summary
	for i, p := range b.Places {
		if _, ok := registry.ParsePlaceCategory(p.Category); !ok {
			return sum, &LoadError{Source: "reg_places", Index: i, Err: fmt.Errorf("invalid place category %q", p.Category)}
		}
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return sum, err
	}
	defer tx.Rollback()

	stmtPlace, err := tx.PrepareContext(ctx, `INSERT INTO reg_places(id,name,category,x,y) VALUES($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, category=EXCLUDED.category, x=EXCLUDED.x, y=EXCLUDED.y`)
	if err != nil {
		return sum, err
	}
	defer stmtPlace.Close()
	stmtArea, err := tx.PrepareContext(ctx, `INSERT INTO reg_areas(id,name,coords) VALUES($1,$2,$3)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, coords=EXCLUDED.coords`)
	if err != nil {
		return sum, err
	}
	defer stmtArea.Close()
	stmtLink, err := tx.PrepareContext(ctx, `INSERT INTO reg_area_links(child_id,parent_id)
        SELECT $1::bigint, $2::bigint WHERE EXISTS (SELECT 1 FROM reg_areas WHERE id=$2::bigint)
        ON CONFLICT (child_id) DO NOTHING`)
	if err != nil {
		return sum, err
	}
	defer stmtLink.Close()

	for i, p := range b.Places {
		cat, _ := registry.ParsePlaceCategory(p.Category)
		if _, err := stmtPlace.ExecContext(ctx, p.ID, p.Name, cat.String(), p.X, p.Y); err != nil {
			return sum, &LoadError{Source: "reg_places", Index: i, Err: err}
		}
		sum.Places++
	}
	for i, a := range b.Areas {
		coords := a.Coords
		if coords == nil {
			coords = [][2]int32{}
		}
		raw, err := json.Marshal(coords)
		if err != nil {
			return sum, &LoadError{Source: "reg_areas", Index: i, Err: err}
		}
		if _, err := stmtArea.ExecContext(ctx, a.ID, a.Name, string(raw)); err != nil {
			return sum, &LoadError{Source: "reg_areas", Index: i, Err: err}
		}
		sum.Areas++
	}
	for i, a := range b.Areas {
		if a.Parent == nil {
			continue
		}
		res, err := stmtLink.ExecContext(ctx, a.ID, *a.Parent)
		if err != nil {
			return sum, &LoadError{Source: "reg_area_links", Index: i, Err: err}
		}
		if n, _ := res.RowsAffected(); n == 1 {
			sum.Links++
		} else {
			sum.Skipped++
		}
	}
	if err := tx.Commit(); err != nil {
		return sum, err
	}
	logger.L().Info("loader_pg_seed_done", "places", sum.Places, "areas", sum.Areas, "links", sum.Links, "skipped", sum.Skipped)
	return sum, nil
}
