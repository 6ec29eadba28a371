package core

import (
	"sync"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
)

// cell computes its value at most once
type cell[T any] struct {
	once sync.Once
	val  T
	err  error
}

type memoMap[T any] struct {
	mu    sync.Mutex
	cells map[string]*cell[T]
}

func (m *memoMap[T]) get(key string, fn func() (T, error)) (T, error) {
	m.mu.Lock()
	if m.cells == nil {
		m.cells = make(map[string]*cell[T])
	}
	c, ok := m.cells[key]
	if !ok {
		c = &cell[T]{}
		m.cells[key] = c
	}
	m.mu.Unlock()

	c.once.Do(func() { c.val, c.err = fn() })
	return c.val, c.err
}

// fileMemo holds per-file work for one scan, so each file is hashed and
// embedded once however many pairs it belongs to
type fileMemo struct {
	digests    memoMap[string]
	phashes    memoMap[string]
	lengths    memoMap[int]
	embeddings memoMap[embedding.Result]
}

func newFileMemo() *fileMemo {
	return &fileMemo{}
}

func (m *fileMemo) digest(path string, fn func() (string, error)) (string, error) {
	return m.digests.get(path, fn)
}

func (m *fileMemo) phash(path string, fn func() (string, error)) (string, error) {
	return m.phashes.get(path, fn)
}

func (m *fileMemo) length(path string, fn func() (int, error)) (int, error) {
	return m.lengths.get(path, fn)
}

func (m *fileMemo) embed(path, kind string, fn func() embedding.Result) embedding.Result {
	res, _ := m.embeddings.get(path+"\x00"+kind, func() (embedding.Result, error) {
		return fn(), nil
	})
	return res
}
