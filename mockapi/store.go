package mockapi

import (
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/kochabx/eduportal/model"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// collection 内存中的实体集合，按 id 升序返回
type collection[T any] struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]T
	setID func(*T, int64)
}

func newCollection[T any](setID func(*T, int64)) *collection[T] {
	return &collection[T]{items: make(map[int64]T), setID: setID}
}

func (c *collection[T]) create(v T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.setID(&v, c.seq)
	c.items[c.seq] = v
	return v
}

func (c *collection[T]) get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	return v, ok
}

// update 在锁内修改实体，fn 返回 false 时放弃修改
func (c *collection[T]) update(id int64, fn func(*T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[id]
	if !ok || !fn(&v) {
		return v, false
	}
	c.setID(&v, id)
	c.items[id] = v
	return v, true
}

func (c *collection[T]) delete(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

func (c *collection[T]) find(match func(T) bool) (T, bool) {
	for _, v := range c.list(match) {
		return v, true
	}
	var zero T
	return zero, false
}

func (c *collection[T]) list(match func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v := c.items[id]; match == nil || match(v) {
			out = append(out, v)
		}
	}
	return out
}

// paginate 按 limit/page 切片，next/previous 为绝对地址
func paginate[T any](items []T, u *url.URL) model.Page[T] {
	q := u.Query()
	limit := queryInt(q, "limit", defaultLimit)
	limit = min(max(limit, 1), maxLimit)
	page := max(queryInt(q, "page", 1), 1)

	p := model.Page[T]{Count: len(items), Results: []T{}}
	start := (page - 1) * limit
	if start < len(items) {
		p.Results = items[start:min(start+limit, len(items))]
	}
	if start+limit < len(items) {
		p.Next = pageURL(u, page+1)
	}
	if page > 1 {
		p.Previous = pageURL(u, page-1)
	}
	return p
}

func pageURL(u *url.URL, page int) *string {
	next := *u
	q := next.Query()
	q.Set("page", strconv.Itoa(page))
	next.RawQuery = q.Encode()
	s := next.String()
	return &s
}

func queryInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return def
	}
	return n
}
