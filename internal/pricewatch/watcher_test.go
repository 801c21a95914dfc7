package pricewatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pendingCall struct {
	input   service.PriceQuoteInput
	ctx     context.Context
	release chan struct{}
}

// gatedCalculator 每次调用阻塞直到测试放行，按商品 ID 生成价格
type gatedCalculator struct {
	mu    sync.Mutex
	calls []*pendingCall
	seen  chan *pendingCall
	err   error
}

func newGatedCalculator() *gatedCalculator {
	return &gatedCalculator{seen: make(chan *pendingCall, 16)}
}

func (g *gatedCalculator) CalculateFinalPrice(ctx context.Context, input service.PriceQuoteInput) (*service.PriceQuote, error) {
	call := &pendingCall{input: input, ctx: ctx, release: make(chan struct{})}
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
	g.seen <- call

	<-call.release
	if g.err != nil {
		return nil, g.err
	}
	price := models.NewMoneyFromInt(int64(input.ProductID) * 10)
	return &service.PriceQuote{
		OriginalPrice:    price,
		FinalPrice:       price,
		DiscountsApplied: []service.AppliedDiscount{},
	}, nil
}

func (g *gatedCalculator) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case call := <-g.seen:
		return call
	case <-time.After(2 * time.Second):
		t.Fatalf("calculator was not called")
		return nil
	}
}

func waitForState(t *testing.T, w *Watcher, cond func(State) bool) State {
	t.Helper()
	var state State
	require.Eventually(t, func() bool {
		state = w.State()
		return cond(state)
	}, 2*time.Second, 5*time.Millisecond)
	return state
}

func TestWatcherUpdatesState(t *testing.T) {
	calc := newGatedCalculator()
	w := NewWatcher(calc, nil)
	defer w.Close()

	w.Update(3, nil, 1)
	call := calc.next(t)
	assert.True(t, w.State().Loading)

	close(call.release)
	state := waitForState(t, w, func(s State) bool { return !s.Loading })
	assert.NoError(t, state.Err)
	assert.Equal(t, "30.00", state.FinalPrice.String())
}

func TestWatcherDiscardsStaleResult(t *testing.T) {
	calc := newGatedCalculator()
	w := NewWatcher(calc, nil)
	defer w.Close()

	w.Update(1, nil, 1)
	first := calc.next(t)
	latest := w.Update(2, nil, 1)
	second := calc.next(t)

	select {
	case <-first.ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("previous calculation was not cancelled")
	}

	close(second.release)
	state := waitForState(t, w, func(s State) bool { return !s.Loading })
	assert.Equal(t, "20.00", state.FinalPrice.String())
	assert.Equal(t, latest, state.Generation)

	// 旧结果迟到，不得覆盖新状态
	close(first.release)
	time.Sleep(20 * time.Millisecond)
	state = w.State()
	assert.Equal(t, "20.00", state.FinalPrice.String())
	assert.Equal(t, latest, state.Generation)
}

func TestWatcherKeepsPriorPriceOnError(t *testing.T) {
	calc := newGatedCalculator()
	w := NewWatcher(calc, nil)
	defer w.Close()

	w.Update(5, nil, 1)
	close(calc.next(t).release)
	waitForState(t, w, func(s State) bool { return !s.Loading })

	calc.err = errors.New("failed to calculate price")
	w.Update(6, nil, 1)
	close(calc.next(t).release)
	state := waitForState(t, w, func(s State) bool { return !s.Loading })

	require.Error(t, state.Err)
	assert.Equal(t, "50.00", state.FinalPrice.String())
}

func TestWatcherNotifiesAndCopiesVariant(t *testing.T) {
	calc := newGatedCalculator()
	var mu sync.Mutex
	var states []State
	w := NewWatcher(calc, func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	defer w.Close()

	variantID := uint(9)
	w.Update(4, &variantID, 2)
	variantID = 10
	call := calc.next(t)
	require.NotNil(t, call.input.VariantID)
	assert.Equal(t, uint(9), *call.input.VariantID)
	assert.Equal(t, 2, call.input.Quantity)

	close(call.release)
	waitForState(t, w, func(s State) bool { return !s.Loading })

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
}

func TestWatcherCloseCancelsInFlight(t *testing.T) {
	calc := newGatedCalculator()
	w := NewWatcher(calc, nil)

	w.Update(1, nil, 1)
	call := calc.next(t)

	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()

	select {
	case <-call.ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("close did not cancel in-flight calculation")
	}
	close(call.release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("close did not return")
	}
	assert.True(t, w.State().Loading)
}

type instantCalculator struct{}

func (instantCalculator) CalculateFinalPrice(_ context.Context, input service.PriceQuoteInput) (*service.PriceQuote, error) {
	price := models.NewMoneyFromInt(int64(input.Quantity))
	return &service.PriceQuote{OriginalPrice: price, FinalPrice: price}, nil
}

func TestWatcherNotificationsNeverGoBackwards(t *testing.T) {
	var mu sync.Mutex
	var states []State
	w := NewWatcher(instantCalculator{}, func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(quantity int) {
			defer wg.Done()
			w.Update(1, nil, quantity)
		}(i)
	}
	wg.Wait()
	w.Close()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, states)
	for i := 1; i < len(states); i++ {
		assert.Greater(t, notifyOrder(states[i]), notifyOrder(states[i-1]),
			"state %d (gen %d loading=%v) delivered after gen %d loading=%v",
			i, states[i].Generation, states[i].Loading, states[i-1].Generation, states[i-1].Loading)
	}
	last := states[len(states)-1]
	assert.Equal(t, uint64(50), last.Generation)
}

func TestWatcherDropsOlderSnapshotAfterNewer(t *testing.T) {
	var delivered []State
	w := NewWatcher(instantCalculator{}, func(s State) { delivered = append(delivered, s) })

	w.notify(State{Generation: 2, Loading: false})
	w.notify(State{Generation: 2, Loading: true})
	w.notify(State{Generation: 1, Loading: false})
	w.notify(State{Generation: 3, Loading: true})

	require.Len(t, delivered, 2)
	assert.Equal(t, uint64(2), delivered[0].Generation)
	assert.Equal(t, uint64(3), delivered[1].Generation)
	assert.True(t, delivered[1].Loading)
}
