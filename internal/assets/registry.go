// Package assets tracks binary resources held by an editing session, such
// as uploaded images, and reconciles them against the component tree.
//
// Image nodes refer to assets by putting the asset id in props.src. A value
// that looks like a remote URL or inline data is not a local reference.
// Assets are never dropped automatically when the nodes referring to them
// disappear; SweepUnused reclaims them.
package assets

import (
	"encoding/base64"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// LocalAsset is a binary held by the session. Treat Data as read-only.
type LocalAsset struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimeType"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Size returns the payload length in bytes.
func (a *LocalAsset) Size() int {
	return len(a.Data)
}

// DataURL renders the payload as an inline data: URL, the form a renderer
// can use in place of the local id.
func (a *LocalAsset) DataURL() string {
	return "data:" + a.MimeType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// References exposes the props.src values of every image node in a forest.
type References interface {
	ImageSources() []string
}

var nonLocalPrefixes = []string{"http://", "https://", "//", "data:", "blob:"}

// IsLocalReference reports whether v names a local asset: it is non-empty,
// not a remote URL and not an inline payload.
func IsLocalReference(v string) bool {
	if v == "" {
		return false
	}
	return !lo.SomeBy(nonLocalPrefixes, func(p string) bool {
		return strings.HasPrefix(v, p)
	})
}

// Registry holds the session's local assets in ingestion order.
//
// Mutations from editor commands and commits from ingestion goroutines are
// serialized by an internal mutex.
type Registry struct {
	refs  References
	newID func() string
	now   func() time.Time
	log   logrus.FieldLogger

	mu       sync.Mutex
	assets   []*LocalAsset
	inflight sync.WaitGroup
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDFunc replaces the asset id generator.
func WithIDFunc(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

// WithClock replaces the time source used for CreatedAt.
func WithClock(fn func() time.Time) Option {
	return func(r *Registry) { r.now = fn }
}

// WithLogger sets the registry logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates an empty registry that resolves liveness against refs.
func NewRegistry(refs References, opts ...Option) *Registry {
	r := &Registry{
		refs:  refs,
		newID: NewID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = l
	}
	return r
}

// NewID returns a fresh asset id.
func NewID() string {
	return "asset_" + uuid.NewString()
}

// Lookup returns the asset with the given id.
func (r *Registry) Lookup(id string) (*LocalAsset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Find(r.assets, func(a *LocalAsset) bool { return a.ID == id })
}

// All returns every registered asset in ingestion order.
func (r *Registry) All() []*LocalAsset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*LocalAsset(nil), r.assets...)
}

// Len returns the number of registered assets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.assets)
}

// HasLocalReferences reports whether any image node points at a local
// asset id, registered or not.
func (r *Registry) HasLocalReferences() bool {
	return lo.SomeBy(r.refs.ImageSources(), IsLocalReference)
}

// LocalReferences returns the distinct local reference values used by image
// nodes, in first-use order.
func (r *Registry) LocalReferences() []string {
	return lo.Uniq(lo.Filter(r.refs.ImageSources(), func(v string, _ int) bool {
		return IsLocalReference(v)
	}))
}

// UsedAssets returns the registered assets that some image node refers to.
func (r *Registry) UsedAssets() []*LocalAsset {
	used := lo.Keyify(r.LocalReferences())

	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Filter(r.assets, func(a *LocalAsset, _ int) bool {
		_, ok := used[a.ID]
		return ok
	})
}

// SweepUnused drops every asset no image node refers to and returns how
// many were removed. Removed assets cannot be recovered.
func (r *Registry) SweepUnused() int {
	used := lo.Keyify(r.LocalReferences())

	r.mu.Lock()
	defer r.mu.Unlock()
	kept, dropped := lo.FilterReject(r.assets, func(a *LocalAsset, _ int) bool {
		_, ok := used[a.ID]
		return ok
	})
	r.assets = kept
	for _, a := range dropped {
		r.log.WithFields(logrus.Fields{"id": a.ID, "filename": a.Filename}).Debug("asset swept")
	}
	return len(dropped)
}

// Remove drops one asset. It reports false when the id is not registered.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := lo.IndexOf(lo.Map(r.assets, func(a *LocalAsset, _ int) string { return a.ID }), id)
	if i < 0 {
		return false
	}
	r.assets = append(r.assets[:i], r.assets[i+1:]...)
	return true
}

// Wait blocks until every ingestion started so far has finished.
func (r *Registry) Wait() {
	r.inflight.Wait()
}

func (r *Registry) commit(a *LocalAsset) {
	r.mu.Lock()
	r.assets = append(r.assets, a)
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"id":       a.ID,
		"filename": a.Filename,
		"mime":     a.MimeType,
		"bytes":    a.Size(),
	}).Info("asset ingested")
}
