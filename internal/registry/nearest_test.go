package registry

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestFilterAndLimit(t *testing.T) {
	r := New()
	r.AddPlace(1, "a", Peak, Coord{10, 0})
	r.AddPlace(2, "b", Peak, Coord{1, 1})
	r.AddPlace(3, "c", Peak, Coord{5, 5})
	r.AddPlace(4, "d", Peak, Coord{0, 2})
	r.AddPlace(5, "e", Bay, Coord{0, 0})

	assert.Equal(t, []PlaceID{2, 4, 3}, r.Nearest(Coord{0, 0}, Peak))
	assert.Equal(t, []PlaceID{5, 2, 4}, r.Nearest(Coord{0, 0}, NoCategory))
	assert.Equal(t, []PlaceID{5}, r.Nearest(Coord{100, 100}, Bay))

	got := r.Nearest(Coord{0, 0}, Parking)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNearestTieBreak(t *testing.T) {
	r := New()
	// 四点到原点距离均为 5
	r.AddPlace(1, "a", Other, Coord{0, 5})
	r.AddPlace(2, "b", Other, Coord{3, -4})
	r.AddPlace(3, "c", Other, Coord{-3, -4})
	r.AddPlace(4, "d", Other, Coord{4, 3})
	// y 相同按标识升序
	assert.Equal(t, []PlaceID{2, 3, 4}, r.Nearest(Coord{0, 0}, NoCategory))

	// 查询点不在原点时同样以 y 决胜
	r2 := New()
	r2.AddPlace(1, "a", Other, Coord{11, 10})
	r2.AddPlace(2, "b", Other, Coord{10, 9})
	assert.Equal(t, []PlaceID{2, 1}, r2.Nearest(Coord{10, 10}, Other))
}

func TestNearestMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	r := New()
	for i := 0; i < 300; i++ {
		r.AddPlace(PlaceID(i), "p", Category(rng.Intn(3)), Coord{int32(rng.Intn(41) - 20), int32(rng.Intn(41) - 20)})
	}
	for n := 0; n < 50; n++ {
		q := Coord{int32(rng.Intn(41) - 20), int32(rng.Intn(41) - 20)}
		cat := Category(rng.Intn(3))
		if n%5 == 0 {
			cat = NoCategory
		}
		var cands []*place
		for _, p := range r.places {
			if cat == NoCategory || p.cat == cat {
				cands = append(cands, p)
			}
		}
		sort.Slice(cands, func(i, j int) bool { return better(q, cands[i], cands[j]) })
		var want []PlaceID
		for i := 0; i < len(cands) && i < NearestK; i++ {
			want = append(want, cands[i].id)
		}
		got := r.Nearest(q, cat)
		require.LessOrEqual(t, len(got), NearestK)
		assert.Equal(t, want, got)
	}
}

func TestHandleSerializesAccess(t *testing.T) {
	h := NewHandle(nil)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := PlaceID(w*1000 + i)
				h.AddPlace(id, "p", Shelter, Coord{int32(i), int32(w)})
				if i%3 == 0 {
					h.ChangeName(id, "q")
				}
				h.Do(func(r *Registry) { _ = r.PlacesByName() })
			}
		}(w)
	}
	wg.Wait()
	h.Do(func(r *Registry) {
		assert.Equal(t, 800, r.Count())
		assert.Len(t, r.PlacesByCoord(), 800)
		consistent(t, r)
	})
	h.ClearAll()
	h.Do(func(r *Registry) { assert.Equal(t, 0, r.Count()) })
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("shelter")
	require.True(t, ok)
	assert.Equal(t, Shelter, c)
	c, ok = ParseCategory("")
	require.True(t, ok)
	assert.Equal(t, NoCategory, c)
	_, ok = ParseCategory("volcano")
	assert.False(t, ok)
	assert.Equal(t, "PARKING", Parking.String())
	assert.Equal(t, "UNKNOWN", Category(42).String())
}

func TestParsePlaceCategory(t *testing.T) {
	c, ok := ParsePlaceCategory("")
	require.True(t, ok)
	assert.Equal(t, Other, c)
	c, ok = ParsePlaceCategory("peak")
	require.True(t, ok)
	assert.Equal(t, Peak, c)
	_, ok = ParsePlaceCategory("NO_TYPE")
	assert.False(t, ok, "wildcard is not a place category")
	_, ok = ParsePlaceCategory("volcano")
	assert.False(t, ok)
}
