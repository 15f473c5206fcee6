package minio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/storage/tests"
)

const testBucket = "thisisacatforsureyouknowit-test"

// fakeServer is a single-bucket S3 stand-in. It is served over TLS so the
// client sends plain payloads instead of signed chunks.
type fakeServer struct {
	mu           sync.Mutex
	bucketExists bool
	bucketMade   bool
	objects      map[string]tests.Object
}

func newFakeServer(bucketExists bool) *fakeServer {
	return &fakeServer{bucketExists: bucketExists, objects: make(map[string]tests.Object)}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != testBucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case r.Method == http.MethodHead && key == "":
		if !f.bucketExists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && key == "":
		f.bucketExists = true
		f.bucketMade = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.objects[key] = tests.Object{Data: body, ContentType: r.Header.Get("Content-Type")}
		w.Header().Set("ETag", `"9b2cf535f27731c974343645a3985328"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeServer) fetch(key string) (tests.Object, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key]
	return obj, ok
}

func (f *fakeServer) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = make(map[string]tests.Object)
}

func newTestStore(t *testing.T, handler http.Handler) *ObjectStore {
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	store, err := newObjectStore(config.StorageConfig{
		Bucket:    testBucket,
		Endpoint:  server.URL,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
	}, server.Client().Transport, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestObjectStore(t *testing.T) {
	fake := newFakeServer(true)
	store := newTestStore(t, fake)

	tests.RunStoreTests(t, store, fake.fetch, fake.reset)
}

func TestEnsureBucketCreatesMissingBucket(t *testing.T) {
	fake := newFakeServer(false)
	store := newTestStore(t, fake)

	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.True(t, fake.bucketMade)
}

func TestEnsureBucketKeepsExistingBucket(t *testing.T) {
	fake := newFakeServer(true)
	store := newTestStore(t, fake)

	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.False(t, fake.bucketMade)
}

func TestNewObjectStoreParsesEndpointScheme(t *testing.T) {
	store, err := NewObjectStore(config.StorageConfig{
		Bucket:   testBucket,
		Endpoint: "https://objects.example.com:9000",
		Region:   "us-east-1",
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "objects.example.com:9000", store.client.EndpointURL().Host)
	assert.Equal(t, "https", store.client.EndpointURL().Scheme)
}
