package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// ErrIngestion is wrapped by every ingestion failure.
var ErrIngestion = errors.New("assets: ingestion failed")

// Ingestion is a pending asset read. It resolves exactly once.
type Ingestion struct {
	done  chan struct{}
	asset *LocalAsset
	err   error
}

// Done is closed when the ingestion has finished.
func (in *Ingestion) Done() <-chan struct{} {
	return in.done
}

// Wait blocks until the ingestion finishes and returns the registered
// asset or the failure.
func (in *Ingestion) Wait() (*LocalAsset, error) {
	<-in.done
	return in.asset, in.err
}

// Asset returns the registered asset without blocking. ok is false while
// the read is still running or when it failed.
func (in *Ingestion) Asset() (asset *LocalAsset, ok bool) {
	select {
	case <-in.done:
		return in.asset, in.asset != nil
	default:
		return nil, false
	}
}

// Err returns the failure of a finished ingestion, or nil while it runs.
func (in *Ingestion) Err() error {
	select {
	case <-in.done:
		return in.err
	default:
		return nil
	}
}

// Ingest reads src in the background and registers the payload as a new
// asset. It returns at once. The asset becomes visible to the registry only
// after the whole payload has been read; a read error, an empty payload or
// a cancelled ctx fails the ingestion and registers nothing. An empty
// mimeType is sniffed from the payload.
func (r *Registry) Ingest(ctx context.Context, src io.Reader, filename, mimeType string) *Ingestion {
	in := &Ingestion{done: make(chan struct{})}
	id := r.newID()

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		defer close(in.done)

		data, err := readAll(ctx, src)
		if err == nil && len(data) == 0 {
			err = errors.New("empty payload")
		}
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			in.err = fmt.Errorf("%w: %s: %w", ErrIngestion, filename, err)
			r.log.WithField("filename", filename).WithError(err).Warn("asset ingestion failed")
			return
		}

		if mimeType == "" {
			mimeType = mimetype.Detect(data).String()
		}
		in.asset = &LocalAsset{
			ID:        id,
			Filename:  filename,
			MimeType:  mimeType,
			Data:      data,
			CreatedAt: r.now(),
		}
		r.commit(in.asset)
	}()
	return in
}

// IngestBytes registers data synchronously. It is Ingest for payloads that
// are already in memory.
func (r *Registry) IngestBytes(filename, mimeType string, data []byte) (*LocalAsset, error) {
	return r.Ingest(context.Background(), bytes.NewReader(data), filename, mimeType).Wait()
}

type readResult struct {
	data []byte
	err  error
}

// readAll reads src to EOF. It returns ctx.Err() as soon as ctx is done,
// even while a Read is blocked; the reader goroutine then finishes on its
// own and its payload is discarded.
func readAll(ctx context.Context, src io.Reader) ([]byte, error) {
	ch := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(&ctxReader{ctx: ctx, r: src})
		ch <- readResult{data, err}
	}()

	select {
	case res := <-ch:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ctxReader stops a read loop once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
