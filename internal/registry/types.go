// 包 registry：地点与区域的内存登记表，维护多套同步索引、排序缓存、区域层级与最近邻查询
package registry

import (
	"math"
	"strings"
)

// PlaceID / AreaID：外部分配的整数标识，登记表不复用也不生成
type (
	PlaceID int64
	AreaID  int64
)

// 未命中哨兵值：查询未知标识时与 ok=false 一同返回，调用方按正常否定结果处理
const (
	NoPlace PlaceID = -1
	NoArea  AreaID  = -1
	NoName          = "!!NO_NAME!!"
	NoValue         = math.MinInt32
)

// Coord：平面整数坐标（32 位）
type Coord struct {
	X int32
	Y int32
}

// NoCoord：坐标未命中哨兵
var NoCoord = Coord{X: NoValue, Y: NoValue}

// 文档注释：地点分类（封闭集合）
// 背景：NoCategory 既是查询未命中的返回值，也是最近邻查询中“不过滤”的通配值。
type Category int

const (
	Other Category = iota
	Firepit
	Shelter
	Parking
	Peak
	Bay
	AreaType
	NoCategory
)

var categoryNames = [...]string{"OTHER", "FIREPIT", "SHELTER", "PARKING", "PEAK", "BAY", "AREA", "NO_TYPE"}

func (c Category) String() string {
	if c < Other || c > NoCategory {
		return "UNKNOWN"
	}
	return categoryNames[c]
}

// ParseCategory：按名称解析分类，大小写不敏感；空串视为通配
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoCategory, true
	}
	for i, n := range categoryNames {
		if strings.EqualFold(n, s) {
			return Category(i), true
		}
	}
	return NoCategory, false
}

// ParsePlaceCategory：解析地点自身的分类；空串视为 OTHER，通配值 NO_TYPE 不能作为地点分类
func ParsePlaceCategory(s string) (Category, bool) {
	if strings.TrimSpace(s) == "" {
		return Other, true
	}
	c, ok := ParseCategory(s)
	if !ok || c == NoCategory {
		return NoCategory, false
	}
	return c, true
}

type place struct {
	id    PlaceID
	name  string
	cat   Category
	coord Coord
}

// 区域以标识互相引用（父/子），不持有指针，避免生命周期与环问题
type area struct {
	id       AreaID
	name     string
	coords   []Coord
	parent   AreaID
	children []AreaID
}
