package registry

import "math/bits"

// 文档注释：坐标全序关系
// 背景：按到原点的欧氏距离排序，距离相同时 y 小者在前；排序缓存与最近邻共用同一比较，避免两处规则漂移。
// 约束：比较使用距离平方；int32 坐标差的平方和最大约 2^65，以 128 位无符号整数表示，任意坐标都不会溢出。
func CoordLess(a, b Coord) bool {
	return closer(Coord{}, a, b) < 0
}

// closer：以 q 为参照比较 a、b，返回 <0 表示 a 更近（或同距时 y 更小），0 表示完全相同
func closer(q, a, b Coord) int {
	if c := dist2(q, a).cmp(dist2(q, b)); c != 0 {
		return c
	}
	switch {
	case a.Y < b.Y:
		return -1
	case a.Y > b.Y:
		return 1
	}
	return 0
}

// u128：距离平方（高 64 位、低 64 位）
type u128 struct{ hi, lo uint64 }

func (x u128) cmp(y u128) int {
	switch {
	case x.hi != y.hi:
		if x.hi < y.hi {
			return -1
		}
		return 1
	case x.lo < y.lo:
		return -1
	case x.lo > y.lo:
		return 1
	}
	return 0
}

func dist2(a, b Coord) u128 {
	dx, dy := absDiff(a.X, b.X), absDiff(a.Y, b.Y)
	h1, l1 := bits.Mul64(dx, dx)
	h2, l2 := bits.Mul64(dy, dy)
	lo, carry := bits.Add64(l1, l2, 0)
	hi, _ := bits.Add64(h1, h2, carry)
	return u128{hi: hi, lo: lo}
}

func absDiff(a, b int32) uint64 {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return uint64(d)
}
