package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/storage"
)

// Object is what a backend ended up holding for a key.
type Object struct {
	Data        []byte
	ContentType string
}

// Fetch reads back what a Store wrote, bypassing the Store interface.
type Fetch func(key string) (Object, bool)

func RunStoreTests(t *testing.T, s storage.Store, fetch Fetch, teardown func()) {
	for _, tf := range []func(t *testing.T, s storage.Store, fetch Fetch){
		testPutReturnsKey,
		testPutOverwrites,
		testPutNestedKey,
		testPutRejectsEmptyKey,
		testPutRejectsEmptyData,
	} {
		tf(t, s, fetch)
		teardown()
	}
}

func testPutReturnsKey(t *testing.T, s storage.Store, fetch Fetch) {
	t.Run("Put returns key", func(t *testing.T) {
		key := "cats/20240101_120000_cat.jpg"
		data := []byte("jpeg-data")

		got, err := s.Put(context.Background(), key, data, "image/jpeg")
		require.NoError(t, err, "Put should not return an error")
		require.Equal(t, key, got)

		obj, ok := fetch(key)
		require.True(t, ok, "object should exist after Put")
		require.Equal(t, data, obj.Data)
		require.Equal(t, "image/jpeg", obj.ContentType)
	})
}

func testPutOverwrites(t *testing.T, s storage.Store, fetch Fetch) {
	t.Run("Put overwrites", func(t *testing.T) {
		key := "cats/20240101_120000_cat.png"

		_, err := s.Put(context.Background(), key, []byte("initial"), "image/png")
		require.NoError(t, err)
		_, err = s.Put(context.Background(), key, []byte("replacement"), "image/png")
		require.NoError(t, err)

		obj, ok := fetch(key)
		require.True(t, ok)
		require.Equal(t, []byte("replacement"), obj.Data)
	})
}

func testPutNestedKey(t *testing.T, s storage.Store, fetch Fetch) {
	t.Run("Put keeps spaces and dots in filenames", func(t *testing.T) {
		key := "cats/20240101_120000_my cat.v2.jpeg"

		_, err := s.Put(context.Background(), key, []byte("data"), "image/jpeg")
		require.NoError(t, err)

		_, ok := fetch(key)
		require.True(t, ok)
	})
}

func testPutRejectsEmptyKey(t *testing.T, s storage.Store, fetch Fetch) {
	t.Run("Put rejects empty key", func(t *testing.T) {
		_, err := s.Put(context.Background(), "", []byte("data"), "image/jpeg")
		require.ErrorIs(t, err, storage.ErrEmptyKey)
	})
}

func testPutRejectsEmptyData(t *testing.T, s storage.Store, fetch Fetch) {
	t.Run("Put rejects empty data", func(t *testing.T) {
		_, err := s.Put(context.Background(), "cats/empty.jpg", nil, "image/jpeg")
		require.ErrorIs(t, err, storage.ErrEmptyData)

		_, ok := fetch("cats/empty.jpg")
		require.False(t, ok)
	})
}
