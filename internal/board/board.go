// Package board wires the quote pipeline together: a Source is loaded through
// the cache, normalized into a snapshot, and queried on every interaction.
package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quoteboard/internal/cache"
	"quoteboard/internal/logging"
	"quoteboard/internal/normalize"
	"quoteboard/internal/query"
	"quoteboard/internal/quote"
	"quoteboard/internal/source"

	"github.com/google/uuid"
)

// Snapshot is one full load of the source, normalized.
type Snapshot struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Table    quote.Table
	Report   normalize.Report
}

// View is a query result over a snapshot, plus the vendor selector values.
type View struct {
	Snapshot *Snapshot
	Filter   query.Filter
	Result   query.Result
	Vendors  []string
}

// Options configure a Board.
type Options struct {
	Schema normalize.Schema
	Policy query.Policy
	Cache  cache.Policy
	Now    func() time.Time
}

// Board serves queries over a cached snapshot of one source.
type Board struct {
	src    source.Source
	schema normalize.Schema
	policy query.Policy
	now    func() time.Time
	memo   *cache.Memo[*Snapshot]
}

// New creates a Board reading from src.
func New(src source.Source, opts Options) *Board {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := &Board{
		src:    src,
		schema: opts.Schema,
		policy: opts.Policy,
		now:    opts.Now,
	}
	b.memo = cache.New(b.load, opts.Cache, cache.WithClock(opts.Now))
	return b
}

// DefaultCachePolicy returns the policy for a source kind: remote sheets
// expire after ttl, local sources are kept until refreshed.
func DefaultCachePolicy(kind source.Kind, ttl time.Duration) cache.Policy {
	if kind == source.KindSheet && ttl > 0 {
		return cache.TTL(ttl)
	}
	return cache.Manual()
}

func (b *Board) load(ctx context.Context) (*Snapshot, error) {
	log := logging.Get(logging.CategoryLoader)
	raw, err := b.src.Load(ctx)
	if err != nil {
		log.Warn("load %s failed: %v", b.src.Describe(), err)
		return nil, err
	}

	table, report := normalize.Normalize(raw, b.schema)
	snap := &Snapshot{
		ID:       uuid.NewString(),
		Source:   b.src.Describe(),
		LoadedAt: b.now(),
		Table:    table,
		Report:   report,
	}
	log.With("load_id", snap.ID).Info("loaded %s: %d rows, %d coerced cells, synthesized=%v",
		snap.Source, report.Rows, report.Coerced, report.Synthesized)
	return snap, nil
}

// Source describes the underlying source.
func (b *Board) Source() string {
	return b.src.Describe()
}

// Policy returns the matching policy.
func (b *Board) Policy() query.Policy {
	return b.policy
}

// CacheTTL returns the snapshot ttl, or 0 when the cache is manual.
func (b *Board) CacheTTL() time.Duration {
	return cache.TTLOf(b.memo.Policy())
}

// Snapshot returns the cached snapshot, loading it when needed.
func (b *Board) Snapshot(ctx context.Context) (*Snapshot, error) {
	return b.memo.Get(ctx)
}

// Refresh invalidates the cached snapshot.
func (b *Board) Refresh() {
	b.memo.Invalidate()
}

// Query runs f against the current snapshot.
func (b *Board) Query(ctx context.Context, f query.Filter) (*View, error) {
	snap, err := b.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(snap, f, b.policy), nil
}

// Vendors returns the vendor selector values of the current snapshot.
func (b *Board) Vendors(ctx context.Context) ([]string, error) {
	snap, err := b.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.Vendors(snap.Table, b.policy), nil
}

// Apply queries an already-loaded snapshot. It never fails.
func Apply(snap *Snapshot, f query.Filter, p query.Policy) *View {
	return &View{
		Snapshot: snap,
		Filter:   f,
		Result:   query.Run(snap.Table, f, p),
		Vendors:  query.Vendors(snap.Table, p),
	}
}

// UserMessage converts a load error into the text shown to the user.
// name identifies the source in the file-missing message.
func UserMessage(err error, name string) string {
	var fe *source.FetchError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, source.ErrNotFound):
		return fmt.Sprintf("❌ 找不到 %s 檔案。請確認檔案與程式放在同一個資料夾。", name)
	case errors.As(err, &fe):
		return fmt.Sprintf("❌ 無法讀取雲端試算表：%v", fe.Err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("❌ 讀取 %s 逾時或已取消。", name)
	default:
		return fmt.Sprintf("❌ 讀取 %s 失敗：%v", name, err)
	}
}

// Message converts a load error from this board into user-facing text.
func (b *Board) Message(err error) string {
	return UserMessage(err, b.src.Describe())
}
