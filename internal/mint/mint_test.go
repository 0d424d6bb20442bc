package mint

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mantono/flakeid/pkg/flake"
)

func newService(t *testing.T, clock flake.Clock) (*Service, *Metrics) {
	t.Helper()

	var opts []flake.Option
	if clock != nil {
		opts = append(opts, flake.WithClock(clock))
	}
	gen, err := flake.New(0xC0FFEE, opts...)
	if err != nil {
		t.Fatal(err)
	}

	metrics := NewMetrics(prometheus.NewRegistry())
	return New(Config{Generator: gen, Metrics: metrics}), metrics
}

func TestMint(t *testing.T) {
	svc, metrics := newService(t, nil)

	ids, err := svc.MintN(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(ids); i++ {
		if !ids[i-1].Less(ids[i]) {
			t.Fatalf("id %d (%x) does not sort after %x", i, ids[i], ids[i-1])
		}
	}
	if got, want := ids[0].Node(), svc.Node(); got != want {
		t.Errorf("node: got %#x, want %#x", got, want)
	}
	if got, want := testutil.ToFloat64(metrics.minted), 100.0; got != want {
		t.Errorf("minted metric: got %v, want %v", got, want)
	}
}

func TestMintWaitsForNextMillisecond(t *testing.T) {
	var calls int64
	clock := func() time.Time {
		// the first 65,537 reads see the same millisecond.
		if atomic.AddInt64(&calls, 1) <= flake.MaxSequence+2 {
			return time.UnixMilli(1000)
		}
		return time.UnixMilli(1001)
	}
	svc, metrics := newService(t, clock)
	ctx := context.Background()

	var last flake.ID
	for i := 0; i <= flake.MaxSequence+1; i++ {
		id, err := svc.Mint(ctx)
		if err != nil {
			t.Fatalf("mint %d: %v", i, err)
		}
		if !last.Less(id) {
			t.Fatalf("mint %d: %x does not sort after %x", i, id, last)
		}
		last = id
	}

	if got, want := last.Timestamp(), uint64(1001); got != want {
		t.Errorf("timestamp after wait: got %d, want %d", got, want)
	}
	if got, want := testutil.ToFloat64(metrics.waits), 1.0; got != want {
		t.Errorf("waits: got %v, want %v", got, want)
	}
	if got, want := testutil.ToFloat64(metrics.failures.WithLabelValues("exhausted")), 1.0; got != want {
		t.Errorf("exhausted failures: got %v, want %v", got, want)
	}
}

func TestMintCanceledWhileExhausted(t *testing.T) {
	svc, _ := newService(t, func() time.Time { return time.UnixMilli(1000) })

	for i := 0; i <= flake.MaxSequence; i++ {
		if _, err := svc.Mint(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := svc.Mint(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestMintTimeDrift(t *testing.T) {
	var ms int64 = 2000
	svc, metrics := newService(t, func() time.Time { return time.UnixMilli(atomic.LoadInt64(&ms)) })

	if _, err := svc.Mint(context.Background()); err != nil {
		t.Fatal(err)
	}
	atomic.StoreInt64(&ms, 1999)

	if _, err := svc.Mint(context.Background()); !errors.Is(err, flake.ErrTimeDrift) {
		t.Fatalf("got %v, want ErrTimeDrift", err)
	}
	if got, want := testutil.ToFloat64(metrics.failures.WithLabelValues("time_drift")), 1.0; got != want {
		t.Errorf("drift failures: got %v, want %v", got, want)
	}
	if got := svc.TraceID(); got != "" {
		t.Errorf("trace id during drift: got %q, want empty", got)
	}
}

func TestMintConcurrent(t *testing.T) {
	svc, _ := newService(t, nil)

	const workers, perWorker = 8, 500
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[flake.ID]bool, workers*perWorker)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := svc.MintN(context.Background(), perWorker)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if seen[id] {
					t.Errorf("duplicate id %v", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	if got, want := len(seen), workers*perWorker; got != want {
		t.Errorf("unique ids: got %d, want %d", got, want)
	}
}

func TestMintNBatchSize(t *testing.T) {
	svc, _ := newService(t, nil)
	for _, n := range []int{-1, 0, MaxBatch + 1} {
		if _, err := svc.MintN(context.Background(), n); !errors.Is(err, ErrBatchSize) {
			t.Errorf("MintN(%d): got %v, want ErrBatchSize", n, err)
		}
	}
}

func TestDecode(t *testing.T) {
	f, err := Decode("AAABePbBqL900Cue9CYAAA==")
	if err != nil {
		t.Fatal(err)
	}

	want := Fields{
		ID:        flake.MustParse("AAABePbBqL900Cue9CYAAA=="),
		Timestamp: 1619047590079,
		Time:      time.UnixMilli(1619047590079).UTC(),
		Node:      0x74d02b9ef426,
		Sequence:  0,
		Hex:       "00000178f6c1a8bf74d02b9ef4260000",
	}
	if *f != want {
		t.Errorf("got %+v, want %+v", *f, want)
	}

	if _, err := Decode("not an id"); !errors.Is(err, flake.ErrInvalidEncoding) {
		t.Errorf("got %v, want ErrInvalidEncoding", err)
	}
}
