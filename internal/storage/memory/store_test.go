package memory

import (
	"testing"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/storage/tests"
)

func TestMemoryStore(t *testing.T) {
	store := NewInMemory()
	fetch := func(key string) (tests.Object, bool) {
		data, contentType, ok := store.Get(key)
		return tests.Object{Data: data, ContentType: contentType}, ok
	}
	tests.RunStoreTests(t, store, fetch, store.reset)
}
