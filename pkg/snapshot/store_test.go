package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	bs, err := OpenBolt(filepath.Join(t.TempDir(), "snap.db"))
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	t.Cleanup(func() { bs.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"bolt":   bs,
		"s3":     NewS3Store(newFakeS3(), "bucket", "vtree/"),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	tree := vdom.Ul(
		vdom.Class("list"),
		vdom.Li(vdom.Key("a"), vdom.OnClick(vdom.CallbackFromID(12)), vdom.Text("a")),
		vdom.Li(vdom.Key("b"), vdom.Text("b")),
	)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
			}

			if err := store.Save(ctx, "s1", Snapshot{Seq: 3, Root: tree}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Load(ctx, "s1")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Seq != 3 || !vdom.Equal(got.Root, tree) {
				t.Errorf("Load() = seq %d, congruent %v", got.Seq, vdom.Equal(got.Root, tree))
			}
			if got.Root.Child(0).Key() != "a" {
				t.Errorf("key lost: %q", got.Root.Child(0).Key())
			}

			// Overwrite
			if err := store.Save(ctx, "s1", Snapshot{Seq: 4, Root: nil}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err = store.Load(ctx, "s1")
			if err != nil || got.Seq != 4 || got.Root != nil {
				t.Errorf("Load() after overwrite = %+v, %v", got, err)
			}

			if err := store.Delete(ctx, "s1"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := store.Delete(ctx, "s1"); err != nil {
				t.Errorf("Delete(missing) error = %v", err)
			}
			if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load(deleted) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if err := m.Save(ctx, "a", Snapshot{}); err != nil {
		t.Fatal(err)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
	m.Close()
	if err := m.Save(ctx, "a", Snapshot{}); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Save() after Close = %v, want ErrStoreClosed", err)
	}
	if _, err := m.Load(ctx, "a"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Load() after Close = %v, want ErrStoreClosed", err)
	}
}

func TestBoltStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snap.db")

	bs, err := OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := bs.Save(ctx, "s", Snapshot{Seq: 9, Root: vdom.Text("kept")}); err != nil {
		t.Fatal(err)
	}
	bs.Close()

	bs, err = OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer bs.Close()
	got, err := bs.Load(ctx, "s")
	if err != nil || got.Seq != 9 || got.Root.Text() != "kept" {
		t.Errorf("Load() after reopen = %+v, %v", got, err)
	}
}

func TestS3StoreBackendError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("access denied")
	store := NewS3Store(fake, "bucket", "")

	err := store.Save(context.Background(), "s", Snapshot{})
	if vterrors.Code(err) != "E502" {
		t.Errorf("Save() error = %v, want E502", err)
	}
	if !errors.Is(err, fake.putErr) {
		t.Errorf("Save() error does not wrap the backend error: %v", err)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x09})
	if vterrors.Code(err) != "E502" {
		t.Errorf("Decode() error = %v, want E502", err)
	}
}
