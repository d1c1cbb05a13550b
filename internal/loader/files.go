package loader

import (
	"context"
	"encoding/json"
	"errors"
	"geo-registry/internal/logger"
	"geo-registry/internal/registry"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// 文档注释：从数据目录加载地点与区域
// 背景：约定文件名 places.json（地点数组）、areas.json（区域数组，可带 parent），以及任意 *.geojson（Point→地点，Polygon→区域）；
// 各文件并发读取解析，按固定顺序合并后一次性写入登记表。
// 约束：缺失的约定文件直接跳过；任一文件解析失败则整体失败且不写入任何记录。
func LoadDir(ctx context.Context, dir string, h *registry.Handle) (Summary, error) {
	all, n, err := readDir(ctx, dir)
	if err != nil {
		return Summary{}, err
	}
	sum, err := Apply(h, dir, all)
	if err != nil {
		return sum, err
	}
	logger.L().Info("loader_dir_done", "dir", dir, "files", n, "places", sum.Places, "areas", sum.Areas, "links", sum.Links, "skipped", sum.Skipped)
	return sum, nil
}

// ReadDir：只解析数据目录，不写入登记表（供导出到数据库等用途）
func ReadDir(ctx context.Context, dir string) (Batch, error) {
	b, _, err := readDir(ctx, dir)
	return b, err
}

func readDir(ctx context.Context, dir string) (Batch, int, error) {
	files := []string{filepath.Join(dir, "places.json"), filepath.Join(dir, "areas.json")}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Batch{}, 0, &LoadError{Source: dir, Index: -1, Err: err}
	}
	var geo []string
	for _, ent := range entries {
		if !ent.IsDir() && strings.HasSuffix(strings.ToLower(ent.Name()), ".geojson") {
			geo = append(geo, filepath.Join(dir, ent.Name()))
		}
	}
	sort.Strings(geo)
	files = append(files, geo...)

	batches := make([]Batch, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, fp := range files {
		i, fp := i, fp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(fp)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return &LoadError{Source: fp, Index: -1, Err: err}
			}
			batch, err := parseFile(filepath.Base(fp), b)
			if err != nil {
				return &LoadError{Source: fp, Index: -1, Err: err}
			}
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, 0, err
	}
	var all Batch
	for _, b := range batches {
		all.Places = append(all.Places, b.Places...)
		all.Areas = append(all.Areas, b.Areas...)
	}
	return all, len(files), nil
}

func parseFile(name string, b []byte) (Batch, error) {
	var out Batch
	switch strings.ToLower(name) {
	case "places.json":
		err := json.Unmarshal(b, &out.Places)
		return out, err
	case "areas.json":
		err := json.Unmarshal(b, &out.Areas)
		return out, err
	}
	var gj map[string]any
	if err := json.Unmarshal(b, &gj); err != nil {
		return out, err
	}
	addFromGeoJSON(&out, gj)
	return out, nil
}

// 解析 GeoJSON FeatureCollection/Feature；缺少数值 id 的要素忽略
func addFromGeoJSON(out *Batch, gj map[string]any) {
	switch strings.ToLower(getStr(gj, "type")) {
	case "featurecollection":
		if arr, ok := gj["features"].([]any); ok {
			for _, it := range arr {
				if f, ok := it.(map[string]any); ok {
					addFeature(out, f)
				}
			}
		}
	case "feature":
		addFeature(out, gj)
	}
}

func addFeature(out *Batch, f map[string]any) {
	props, _ := f["properties"].(map[string]any)
	g, _ := f["geometry"].(map[string]any)
	if g == nil {
		return
	}
	id, ok := toInt64(f["id"])
	if !ok {
		id, ok = toInt64(props["id"])
	}
	if !ok {
		return
	}
	name := getStr(props, "name")
	switch strings.ToLower(getStr(g, "type")) {
	case "point":
		if xy, ok := toCoord(g["coordinates"]); ok {
			out.Places = append(out.Places, PlaceRecord{
				ID:       id,
				Name:     name,
				Category: getStr(props, "category"),
				X:        xy[0],
				Y:        xy[1],
			})
		}
	case "polygon":
		a := AreaRecord{ID: id, Name: name, Coords: outerRing(g["coordinates"])}
		if p, ok := toInt64(props["parent"]); ok {
			a.Parent = &p
		}
		out.Areas = append(out.Areas, a)
	case "multipolygon":
		// 只取第一个多边形的外环
		a := AreaRecord{ID: id, Name: name}
		if parts, ok := g["coordinates"].([]any); ok && len(parts) > 0 {
			a.Coords = outerRing(parts[0])
		}
		if p, ok := toInt64(props["parent"]); ok {
			a.Parent = &p
		}
		out.Areas = append(out.Areas, a)
	}
}

func outerRing(v any) [][2]int32 {
	rings, ok := v.([]any)
	if !ok || len(rings) == 0 {
		return nil
	}
	arr, ok := rings[0].([]any)
	if !ok {
		return nil
	}
	out := make([][2]int32, 0, len(arr))
	for _, p := range arr {
		if xy, ok := toCoord(p); ok {
			out = append(out, xy)
		}
	}
	return out
}

// toCoord：[x, y] 截断为整数；超出 int32 范围的点丢弃
func toCoord(v any) ([2]int32, bool) {
	vv, ok := v.([]any)
	if !ok || len(vv) < 2 {
		return [2]int32{}, false
	}
	x, y := math.Trunc(toFloat(vv[0])), math.Trunc(toFloat(vv[1]))
	if x < math.MinInt32 || x > math.MaxInt32 || y < math.MinInt32 || y > math.MaxInt32 {
		return [2]int32{}, false
	}
	return [2]int32{int32(x), int32(y)}, true
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case int:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}
