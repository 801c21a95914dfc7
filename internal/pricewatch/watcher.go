// Package pricewatch 为展示层维护单个商品的实时报价状态。
// 输入变化时旧的计算会被取消，迟到的旧结果直接丢弃。
package pricewatch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/service"
)

// State 报价状态快照
type State struct {
	OriginalPrice    models.Money
	FinalPrice       models.Money
	DiscountsApplied []service.AppliedDiscount
	Loading          bool
	Err              error
	Generation       uint64
}

// Watcher 报价观察者，对每次输入变化重新计算
type Watcher struct {
	calculator service.PriceCalculator
	onChange   func(State)

	generation atomic.Uint64

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup

	// notifyMu 串行化回调；lastNotified 为已送达快照的序号
	notifyMu     sync.Mutex
	lastNotified uint64
}

// NewWatcher 创建观察者，onChange 可为空。
// 回调按代号顺序串行触发，比已送达快照更旧的状态不再回调；
// 回调内不得同步调用 Update 或 Close。
func NewWatcher(calculator service.PriceCalculator, onChange func(State)) *Watcher {
	return &Watcher{
		calculator: calculator,
		onChange:   onChange,
	}
}

// Update 输入变化时触发重新计算，返回本次计算的代号
func (w *Watcher) Update(productID uint, variantID *uint, quantity int) uint64 {
	w.mu.Lock()
	gen := w.generation.Add(1)
	if w.closed {
		w.mu.Unlock()
		return gen
	}
	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.state.Loading = true
	w.state.Generation = gen
	snapshot := w.snapshotLocked()
	w.wg.Add(1)
	w.mu.Unlock()

	w.notify(snapshot)

	input := service.PriceQuoteInput{ProductID: productID, Quantity: quantity}
	if variantID != nil {
		id := *variantID
		input.VariantID = &id
	}
	go w.run(ctx, cancel, gen, input)
	return gen
}

func (w *Watcher) run(ctx context.Context, cancel context.CancelFunc, gen uint64, input service.PriceQuoteInput) {
	defer w.wg.Done()
	defer cancel()

	quote, err := w.calculator.CalculateFinalPrice(ctx, input)

	w.mu.Lock()
	if gen != w.generation.Load() || w.closed {
		w.mu.Unlock()
		logger.Debugw("pricewatch_stale_result_dropped", "generation", gen, "product_id", input.ProductID)
		return
	}
	w.state.Loading = false
	w.state.Err = err
	if err == nil && quote != nil {
		w.state.OriginalPrice = quote.OriginalPrice
		w.state.FinalPrice = quote.FinalPrice
		w.state.DiscountsApplied = quote.DiscountsApplied
	}
	w.cancel = nil
	snapshot := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snapshot)
}

// State 返回当前状态快照
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Close 取消进行中的计算并等待其退出
func (w *Watcher) Close() {
	w.mu.Lock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) snapshotLocked() State {
	snapshot := w.state
	if w.state.DiscountsApplied != nil {
		snapshot.DiscountsApplied = append([]service.AppliedDiscount(nil), w.state.DiscountsApplied...)
	}
	return snapshot
}

// notifyOrder 快照先后：同一代号的计算结果排在其 Loading 状态之后
func notifyOrder(state State) uint64 {
	order := state.Generation * 2
	if !state.Loading {
		order++
	}
	return order
}

func (w *Watcher) notify(state State) {
	if w.onChange == nil {
		return
	}
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()
	order := notifyOrder(state)
	if order <= w.lastNotified {
		return
	}
	w.lastNotified = order
	w.onChange(state)
}
