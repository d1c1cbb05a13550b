package api

// 文档注释：请求与返回结构（对外）
// 背景：统一对外序列化模型，分类以名称字符串传递；坐标以 x/y 32 位整数表示，超出范围的数值在解码时即被拒绝（400）。
// 约束：字段稳定；新增字段需评估兼容性。
type placeRequest struct {
	ID       *int64 `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	X        *int32 `json:"x"`
	Y        *int32 `json:"y"`
}

type placePatch struct {
	Name *string `json:"name"`
	X    *int32  `json:"x"`
	Y    *int32  `json:"y"`
}

type placeResult struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	X        int32  `json:"x"`
	Y        int32  `json:"y"`
}

type areaRequest struct {
	ID     *int64     `json:"id"`
	Name   string     `json:"name"`
	Coords [][2]int32 `json:"coords"`
}

type parentRequest struct {
	Parent *int64 `json:"parent"`
}

type areaResult struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Coords   [][2]int32 `json:"coords"`
	Parent   *int64     `json:"parent,omitempty"`
	Children []int64    `json:"children"`
}

type idsResult[T any] struct {
	IDs []T `json:"ids"`
}

type idResult struct {
	ID int64 `json:"id"`
}

type statsResult struct {
	Places     int    `json:"places"`
	Areas      int    `json:"areas"`
	Generation uint64 `json:"generation"`
}

type errorResult struct {
	Error string `json:"error"`
}
