package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/broker"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/engine"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/position"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/risk"
	"github.com/rxtech-lab/argo-sweep/internal/indicator"
	"github.com/rxtech-lab/argo-sweep/internal/logger"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"go.uber.org/zap"
)

// BrokerFactory creates the account a single run trades against.
type BrokerFactory func(initialCash float64, commission commission_fee.CommissionFee) broker.Broker

// BacktestEngineV1 runs the configured strategy over a feed. It holds only
// read-only configuration; every Run builds its own broker, position and
// random source, so runs may execute concurrently.
type BacktestEngineV1 struct {
	config            BacktestEngineV1Config
	base              types.ParameterSet
	defaults          StrategyParams
	commission        commission_fee.CommissionFee
	indicatorRegistry indicator.IndicatorRegistry
	newBroker         BrokerFactory
	log               *logger.Logger
}

// NewBacktestEngineV1 validates config and returns an engine. A nil logger
// discards output.
func NewBacktestEngineV1(config BacktestEngineV1Config, log *logger.Logger) (engine.Engine, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	base, err := types.NewParameterSet(config.Strategy.Params)
	if err != nil {
		return nil, err
	}

	if err := checkParameterNames(base); err != nil {
		return nil, err
	}

	commission, err := commission_fee.GetCommissionFeeHandler(config.Broker, config.Commission)
	if err != nil {
		return nil, err
	}

	registry := indicator.NewDefaultRegistry()
	if _, err := indicator.Prepare(registry, config.Indicators); err != nil {
		return nil, err
	}

	defaults := DefaultStrategyParams()
	if config.Strategy.Sizer != "" {
		defaults.Sizer = config.Strategy.Sizer
	}

	b := &BacktestEngineV1{
		config:            config,
		base:              base,
		defaults:          defaults,
		commission:        commission,
		indicatorRegistry: registry,
		newBroker:         newSimulatedBroker,
		log:               log.Named("engine"),
	}

	b.log.Debug("Backtest engine initialized",
		zap.Float64("initial_capital", config.InitialCapital),
		zap.String("broker", string(config.Broker)),
		zap.Int("indicators", len(config.Indicators)),
		zap.String("trigger", string(config.Strategy.Entry.Trigger)),
	)

	return b, nil
}

func newSimulatedBroker(initialCash float64, commission commission_fee.CommissionFee) broker.Broker {
	return broker.NewSimulatedBroker(initialCash, commission)
}

// InitialCapital implements engine.Engine.
func (b *BacktestEngineV1) InitialCapital() float64 {
	return b.config.InitialCapital
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// CheckParameters implements engine.Engine.
func (b *BacktestEngineV1) CheckParameters(params types.ParameterSet) error {
	return checkParameterNames(params)
}

// PrepareFeed implements engine.Engine.
func (b *BacktestEngineV1) PrepareFeed(bars []types.Bar) (*types.Feed, error) {
	withSignals, err := indicator.Apply(b.indicatorRegistry, bars, b.config.Indicators)
	if err != nil {
		return nil, err
	}

	return types.NewFeed(withSignals), nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(runID string, feed *types.Feed, params types.ParameterSet, seed int64, callbacks engine.LifecycleCallbacks) (engine.RunResult, error) {
	result := engine.RunResult{
		RunID: runID,
		State: engine.RunStateIdle,
	}

	log := b.log.WithFields(zap.String("run_id", runID))

	if feed == nil {
		result.State = engine.RunStateFailed

		return result, errors.RunFailed(runID, errors.New(errors.ErrCodeEmptyFeed, "no feed to run on"))
	}

	strat, err := buildStrategy(b.config.Strategy, b.defaults, b.base.Merge(params))
	if err != nil {
		result.State = engine.RunStateFailed

		return result, errors.RunFailed(runID, err)
	}

	sim := &simulation{
		runID:     runID,
		strategy:  strat,
		signals:   b.config.Strategy.Signals,
		broker:    b.newBroker(b.config.InitialCapital, b.commission),
		position:  position.New(),
		rng:       rand.New(rand.NewSource(seed)),
		callbacks: callbacks,
		log:       log,
		trades:    nil,
		equity:    make([]types.EquitySample, 0, feed.Len()),
		prev:      optional.None[types.Bar](),
	}

	result.State = engine.RunStateRunning
	runErr := sim.run(feed)

	result.Trades = sim.trades
	result.Equity = sim.equity
	result.Account = sim.broker.Account()
	result.BarsProcessed = sim.processed

	if runErr != nil {
		result.State = engine.RunStateFailed

		log.Debug("Run failed",
			zap.Int("bars_processed", sim.processed),
			zap.Error(runErr),
		)

		return result, errors.RunFailed(runID, runErr)
	}

	if open, ok := sim.position.OpenRecord(); ok {
		open.RunID = runID
		result.Trades = append(result.Trades, open)
	}

	result.State = engine.RunStateFinished

	log.Debug("Run finished",
		zap.Int("bars_processed", sim.processed),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("final_equity", result.Account.Equity),
	)

	return result, nil
}

// simulation is the mutable state of one run. It is confined to the
// goroutine executing Run.
type simulation struct {
	runID     string
	strategy  *strategy
	signals   SignalConfig
	broker    broker.Broker
	position  *position.Position
	rng       *rand.Rand
	callbacks engine.LifecycleCallbacks
	log       *logger.Logger

	trades    []types.TradeRecord
	equity    []types.EquitySample
	prev      optional.Option[types.Bar]
	processed int
}

func (s *simulation) run(feed *types.Feed) error {
	total := feed.Len()

	for bar := range feed.Bars() {
		if err := s.step(bar); err != nil {
			return err
		}

		s.processed++

		if s.callbacks.OnProcessData != nil {
			if err := (*s.callbacks.OnProcessData)(s.processed, total); err != nil {
				return err
			}
		}
	}

	return nil
}

// step processes one bar: validate, mark, then either try to enter or
// manage the open position, then sample equity. A bar that closes a position
// never opens a new one, and a bar that opens one never evaluates exits.
func (s *simulation) step(bar types.Bar) error {
	if err := validateBar(s.prev, bar); err != nil {
		return err
	}

	s.prev = optional.Some(bar)

	if err := s.broker.OnBar(bar); err != nil {
		return err
	}

	if s.position.IsFlat() {
		if err := s.tryEnter(bar); err != nil {
			return err
		}
	} else {
		if err := s.manage(bar); err != nil {
			return err
		}
	}

	s.strategy.entry.Observe(bar)

	if err := s.position.Check(); err != nil {
		return err
	}

	s.equity = append(s.equity, types.EquitySample{
		Index:  bar.Index,
		Time:   bar.Time,
		Equity: s.broker.Account().Equity,
	})

	return nil
}

func (s *simulation) tryEnter(bar types.Bar) error {
	proposed := s.strategy.entry.Decide(bar, s.rng)
	if proposed.IsNone() {
		return nil
	}

	side := proposed.Unwrap()

	thresholds, ok := s.strategy.exits.Thresholds(side, bar.Close, bar)
	if !ok {
		return nil
	}

	account := s.broker.Account()
	quote := risk.Quote{Price: bar.Close, Volatility: optional.None[float64]()}

	if s.signals.Volatility != "" {
		if vol, ok := bar.Signals.Get(s.signals.Volatility); ok {
			quote.Volatility = optional.Some(vol)
		}
	}

	size := risk.Size(account.Equity, quote, s.strategy.sizer)
	size = risk.CapToBalance(size, account.Cash, bar.Close, brokerFee{s.broker}, s.strategy.sizer.MinUnit)

	if size <= 0 {
		s.log.Debug("Entry skipped",
			zap.Int("bar", bar.Index),
			zap.String("side", string(side)),
			zap.Error(risk.Degenerate(account.Equity, bar.Close)),
		)

		return nil
	}

	var (
		fill broker.Fill
		err  error
	)

	if side == types.SideLong {
		fill, err = s.broker.Buy(size, "entry")
	} else {
		fill, err = s.broker.Sell(size, "entry")
	}

	if err != nil {
		return err
	}

	if err := s.position.Open(side, fill.Quantity, bar, fill.Price, fill.Fee, thresholds); err != nil {
		return err
	}

	s.strategy.entry.Commit(bar)

	s.log.Debug("Position opened",
		zap.Int("bar", bar.Index),
		zap.String("side", string(side)),
		zap.Float64("size", fill.Quantity),
		zap.Float64("price", fill.Price),
	)

	return nil
}

func (s *simulation) manage(bar types.Bar) error {
	if err := s.position.Update(bar); err != nil {
		return err
	}

	reason := s.strategy.exits.Evaluate(s.position, bar)
	if reason.IsNone() {
		return nil
	}

	fill, err := s.broker.Close(string(reason.Unwrap()))
	if err != nil {
		return err
	}

	trade, err := s.position.Close(bar, fill.Price, reason.Unwrap(), fill.Fee, fill.PnL)
	if err != nil {
		return err
	}

	trade.RunID = s.runID
	s.trades = append(s.trades, trade)

	s.log.Debug("Position closed",
		zap.Int("bar", bar.Index),
		zap.String("reason", string(reason.Unwrap())),
		zap.Float64("price", fill.Price),
		zap.Float64("pnl", trade.PnL),
	)

	if s.callbacks.OnTrade != nil {
		(*s.callbacks.OnTrade)(s.runID, trade)
	}

	return nil
}

// brokerFee quotes commissions through the broker so sizing and fills agree.
type brokerFee struct {
	broker broker.Broker
}

func (f brokerFee) Calculate(quantity float64, price float64) float64 {
	return f.broker.Fee(quantity, price)
}

// validateBar returns a DataError for a bar the loop must not consume.
func validateBar(prev optional.Option[types.Bar], bar types.Bar) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", bar.Open},
		{"high", bar.High},
		{"low", bar.Low},
		{"close", bar.Close},
		{"volume", bar.Volume},
	}

	for _, field := range fields {
		if math.IsNaN(field.value) {
			return errors.Newf(errors.ErrCodeNaNValue, "bar %d %s is NaN", bar.Index, field.name)
		}

		if math.IsInf(field.value, 0) {
			return errors.Newf(errors.ErrCodeMalformedBar, "bar %d %s is infinite", bar.Index, field.name)
		}
	}

	if bar.Close <= 0 {
		return errors.Newf(errors.ErrCodeMalformedBar, "bar %d close must be positive, got %v", bar.Index, bar.Close)
	}

	if bar.High < bar.Low {
		return errors.Newf(errors.ErrCodeMalformedBar, "bar %d high %v is below low %v", bar.Index, bar.High, bar.Low)
	}

	if bar.Volume < 0 {
		return errors.Newf(errors.ErrCodeMalformedBar, "bar %d volume is negative", bar.Index)
	}

	for name, value := range bar.Signals.All() {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return errors.Newf(errors.ErrCodeNaNValue, "bar %d signal %s is not finite", bar.Index, name)
		}
	}

	if prev.IsSome() {
		last := prev.Unwrap()
		// the first index is free; every later bar must follow without a gap
		if bar.Index != last.Index+1 {
			return errors.Newf(errors.ErrCodeBarOutOfOrder, "bar index %d does not follow %d", bar.Index, last.Index)
		}

		if !bar.Time.IsZero() && !last.Time.IsZero() && !bar.Time.After(last.Time) {
			return errors.Newf(errors.ErrCodeBarOutOfOrder, "bar %d time %s does not follow %s",
				bar.Index, bar.Time.Format(time.RFC3339), last.Time.Format(time.RFC3339))
		}
	}

	return nil
}
