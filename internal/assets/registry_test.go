package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type staticRefs []string

func (s staticRefs) ImageSources() []string { return s }

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

func TestIsLocalReference(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"img_1", true},
		{"asset_0b7f", true},
		{"logo.png", true},
		{"", false},
		{"http://example.com/a.png", false},
		{"https://cdn.example.com/a.png", false},
		{"//cdn.example.com/a.png", false},
		{"data:image/png;base64,AAAA", false},
		{"blob:http://localhost/1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLocalReference(tt.in))
		})
	}
}

func TestImageAssetScenario(t *testing.T) {
	s := editor.NewSession()
	r := NewRegistry(s, WithIDFunc(func() string { return "img_1" }))

	asset, err := r.IngestBytes("logo.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "img_1", asset.ID)

	img, res := s.AddNode(catalog.TypeImage, "")
	require.Equal(t, editor.OK, res)
	assert.False(t, r.HasLocalReferences(), "default src is empty")

	s.UpdateProps(img.ID, map[string]any{"src": "img_1"})
	assert.True(t, r.HasLocalReferences())
	assert.Len(t, r.UsedAssets(), 1)

	s.DeleteNode(img.ID)
	assert.False(t, r.HasLocalReferences())

	_, ok := r.Lookup("img_1")
	assert.True(t, ok, "deleting the node does not drop the asset")

	assert.Equal(t, 1, r.SweepUnused())
	_, ok = r.Lookup("img_1")
	assert.False(t, ok)
}

func TestNestedImagesCount(t *testing.T) {
	s := editor.NewSession()
	r := NewRegistry(s)

	card, _ := s.AddNode(catalog.TypeCard, "")
	row, _ := s.AddNode(catalog.TypeRow, card.ID)
	img, _ := s.AddNode(catalog.TypeImage, row.ID)
	s.UpdateProps(img.ID, map[string]any{"src": "deep"})

	assert.True(t, r.HasLocalReferences())
	assert.Equal(t, []string{"deep"}, r.LocalReferences())
}

func TestUsedAssetsAndSweep(t *testing.T) {
	refs := staticRefs{"a_1", "https://x/y.png", "a_3", "a_1", "", "data:image/gif;base64,R0lG"}
	r := NewRegistry(refs, WithIDFunc(seqIDs("a")))
	for i := 0; i < 4; i++ {
		_, err := r.IngestBytes(fmt.Sprintf("f%d.bin", i), "application/octet-stream", []byte{byte(i + 1)})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a_1", "a_3"}, r.LocalReferences())
	used := r.UsedAssets()
	assert.ElementsMatch(t, []string{"a_1", "a_3"}, assetIDs(used))

	assert.Equal(t, 2, r.SweepUnused())
	assert.ElementsMatch(t, assetIDs(used), assetIDs(r.All()))
	assert.ElementsMatch(t, assetIDs(r.All()), assetIDs(r.UsedAssets()))

	before := r.All()
	assert.Equal(t, 0, r.SweepUnused())
	assert.Equal(t, before, r.All())
}

func TestLocalReferenceWithoutAsset(t *testing.T) {
	r := NewRegistry(staticRefs{"missing"})
	assert.True(t, r.HasLocalReferences())
	assert.Empty(t, r.UsedAssets())
	assert.Equal(t, 0, r.SweepUnused())
}

func TestIngestIsAsynchronous(t *testing.T) {
	r := NewRegistry(staticRefs{})
	pr, pw := io.Pipe()

	in := r.Ingest(context.Background(), pr, "photo.png", "")

	_, ok := in.Asset()
	assert.False(t, ok)
	assert.NoError(t, in.Err())
	assert.Equal(t, 0, r.Len(), "nothing is visible before the read completes")

	_, err := pw.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	asset, err := in.Wait()
	require.NoError(t, err)
	assert.Equal(t, "image/png", asset.MimeType, "mime type is sniffed when missing")
	assert.Equal(t, len(pngHeader), asset.Size())
	assert.Equal(t, "photo.png", asset.Filename)

	select {
	case <-in.Done():
	default:
		t.Fatal("done channel not closed")
	}
	got, ok := in.Asset()
	require.True(t, ok)
	assert.Same(t, asset, got)

	found, ok := r.Lookup(asset.ID)
	require.True(t, ok)
	assert.Same(t, asset, found)
}

func TestIngestFailures(t *testing.T) {
	r := NewRegistry(staticRefs{})

	_, err := r.Ingest(context.Background(), iotest.ErrReader(errors.New("corrupt")), "bad.png", "image/png").Wait()
	assert.ErrorIs(t, err, ErrIngestion)
	assert.ErrorContains(t, err, "corrupt")

	in := r.Ingest(context.Background(), strings.NewReader(""), "empty.png", "image/png")
	_, err = in.Wait()
	assert.ErrorIs(t, err, ErrIngestion)
	_, ok := in.Asset()
	assert.False(t, ok)
	assert.Error(t, in.Err())

	assert.Equal(t, 0, r.Len())
}

func TestIngestCancelled(t *testing.T) {
	r := NewRegistry(staticRefs{})
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()

	in := r.Ingest(ctx, pr, "late.png", "image/png")
	cancel()
	go func() {
		_, _ = pw.Write(pngHeader)
		_ = pw.Close()
	}()

	_, err := in.Wait()
	_ = pr.Close()
	assert.ErrorIs(t, err, ErrIngestion)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, r.Len())
}

func TestIngestCancelledWhileReading(t *testing.T) {
	r := NewRegistry(staticRefs{})
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	// Nothing is ever written, so the read blocks until the pipe closes.
	in := r.Ingest(ctx, pr, "stuck.png", "image/png")
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-in.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("ingestion did not finish after cancel")
	}
	assert.ErrorIs(t, in.Err(), ErrIngestion)
	assert.ErrorIs(t, in.Err(), context.Canceled)

	drained := make(chan struct{})
	go func() {
		r.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("registry Wait blocked on a cancelled ingestion")
	}

	// A payload arriving after the cancel is discarded.
	go func() {
		_, _ = pw.Write(pngHeader)
		_ = pw.Close()
	}()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, r.Len())
}

func TestWaitDrainsIngestions(t *testing.T) {
	r := NewRegistry(staticRefs{}, WithClock(func() time.Time { return time.Unix(100, 0) }))
	for i := 0; i < 10; i++ {
		r.Ingest(context.Background(), strings.NewReader("payload"), "f.txt", "text/plain")
	}
	r.Wait()
	assert.Equal(t, 10, r.Len())

	all := r.All()
	assert.Equal(t, time.Unix(100, 0), all[0].CreatedAt)
	ids := map[string]bool{}
	for _, a := range all {
		ids[a.ID] = true
	}
	assert.Len(t, ids, 10)
}

func TestRemoveAndDataURL(t *testing.T) {
	r := NewRegistry(staticRefs{}, WithIDFunc(seqIDs("x")))
	a, err := r.IngestBytes("a.txt", "text/plain", []byte("hi"))
	require.NoError(t, err)

	assert.Equal(t, "data:text/plain;base64,aGk=", a.DataURL())
	assert.True(t, r.Remove(a.ID))
	assert.False(t, r.Remove(a.ID))
	assert.Equal(t, 0, r.Len())
}

func assetIDs(list []*LocalAsset) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}
