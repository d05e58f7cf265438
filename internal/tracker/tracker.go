// Package tracker implements the put/call signal tracker: analysis of manual
// put and call readings, trend confirmation, and the persisted history mirror.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rewired-gh/putcall/internal/logger"
	"github.com/rewired-gh/putcall/internal/models"
)

// Store is the key-value capability the tracker persists its history through.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Config struct {
	Key             string
	FreshnessWindow time.Duration
	Location        *time.Location
}

func DefaultConfig() Config {
	return Config{
		Key:             "history.json",
		FreshnessWindow: 24 * time.Hour,
		Location:        time.Local,
	}
}

// Tracker holds the store and settings. It keeps no state of its own: every
// operation takes the current TrackerState and returns the next one.
type Tracker struct {
	store  Store
	config Config
}

func New(store Store, config Config) *Tracker {
	def := DefaultConfig()
	if config.Key == "" {
		config.Key = def.Key
	}
	if config.FreshnessWindow <= 0 {
		config.FreshnessWindow = def.FreshnessWindow
	}
	if config.Location == nil {
		config.Location = def.Location
	}
	return &Tracker{store: store, config: config}
}

// Restore loads the persisted history if it is fresh. Absent, malformed or
// stale records all yield the empty state. Malformed JSON is left in place
// for the next save to overwrite; other unusable records are deleted.
func (t *Tracker) Restore(ctx context.Context, now time.Time) models.TrackerState {
	raw, ok, err := t.store.Get(ctx, t.config.Key)
	if err != nil {
		logger.Warn("Failed to read history: %v", err)
		return models.TrackerState{}
	}
	if !ok {
		logger.Debug("No persisted history under %s", t.config.Key)
		return models.TrackerState{}
	}

	var rec models.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		logger.Warn("Ignoring malformed history: %v", err)
		return models.TrackerState{}
	}
	if len(rec.Data) == 0 {
		logger.Debug("Discarding empty history record")
		t.discard(ctx)
		return models.TrackerState{}
	}

	if newest := rec.Data[0]; !inRange(newest.Put) || !inRange(newest.Call) {
		logger.Warn("Discarding history with out-of-range readings put=%d call=%d", newest.Put, newest.Call)
		t.discard(ctx)
		return models.TrackerState{}
	}

	last, ok := entryTime(rec.Data[0], now, t.config.Location)
	if !ok {
		logger.Warn("Discarding history with unreadable time %q", rec.Data[0].Time)
		t.discard(ctx)
		return models.TrackerState{}
	}
	if age := now.Sub(last); age > t.config.FreshnessWindow {
		logger.Info("Discarding stale history (newest entry %v old)", age.Round(time.Minute))
		t.discard(ctx)
		return models.TrackerState{}
	}

	st := models.TrackerState{Entries: rec.Data}
	setPrevious(&st, rec.Data[0])
	logger.Info("Restored %d history entries", len(rec.Data))
	return st
}

// Analyze parses the raw put and call readings, derives a new entry from
// them and the current state, prepends it and persists the history.
//
// Invalid input, including a reading beyond models.MaxReading, returns the
// unchanged state and an *InputError wrapping ErrNotNumeric; the store is
// not touched. A store failure returns the new state together with the error.
func (t *Tracker) Analyze(ctx context.Context, st models.TrackerState, putRaw, callRaw string, now time.Time) (models.TrackerState, error) {
	putValue, err := parseLeadingInt(putRaw)
	if err != nil {
		return st, &InputError{Field: "put", Value: putRaw}
	}
	callValue, err := parseLeadingInt(callRaw)
	if err != nil {
		return st, &InputError{Field: "call", Value: callRaw}
	}

	difference := putValue - callValue
	var putChange, callChange, differenceChange int64
	if st.PreviousPut != nil {
		putChange = putValue - *st.PreviousPut
		callChange = callValue - *st.PreviousCall
		differenceChange = difference - *st.PreviousDifference
	}

	signal, weakness := classify(putChange, callChange)
	trend := confirmTrend(st, signal)

	ts := now
	entry := models.Entry{
		Time:             now.In(t.config.Location).Format(models.TimeLayout),
		Timestamp:        &ts,
		Put:              putValue,
		Call:             callValue,
		Difference:       difference,
		DifferenceChange: differenceChange,
		PutChange:        putChange,
		CallChange:       callChange,
		Signal:           signal,
		Weakness:         weakness,
		TradeSignal:      tradeSignal(trend, signal),
	}

	entries := make([]models.Entry, 0, len(st.Entries)+1)
	entries = append(entries, entry)
	entries = append(entries, st.Entries...)

	next := models.TrackerState{Entries: entries, Trend: trend}
	setPrevious(&next, entry)

	logger.Debug("Analyzed put=%d call=%d: signal=%q trend=%s", putValue, callValue, signal, trend)

	if err := t.save(ctx, next.Entries); err != nil {
		return next, err
	}
	return next, nil
}

// Reset returns the empty state and deletes the persisted record.
func (t *Tracker) Reset(ctx context.Context, _ models.TrackerState) models.TrackerState {
	t.discard(ctx)
	logger.Info("History reset")
	return models.TrackerState{}
}

// Render projects the history into display rows, newest first.
func Render(st models.TrackerState) []models.Row {
	rows := make([]models.Row, len(st.Entries))
	for i, e := range st.Entries {
		rows[i] = models.Row{
			Number:      i + 1,
			Time:        e.Time,
			Put:         e.Put,
			Call:        e.Call,
			Difference:  e.Difference,
			PutChange:   signed(e.PutChange),
			CallChange:  signed(e.CallChange),
			Signal:      string(e.Signal),
			Weakness:    e.Weakness,
			TradeSignal: string(e.TradeSignal),
		}
		if e.DifferenceChange != 0 {
			rows[i].DifferenceChange = signed(e.DifferenceChange)
		}
	}
	return rows
}

func classify(putChange, callChange int64) (models.Signal, string) {
	switch {
	case callChange > putChange:
		if putChange < 0 {
			return models.SignalBearish, fmt.Sprintf("Put is weaker by %d", -putChange)
		}
		return models.SignalBearish, fmt.Sprintf("Call increased by %d", callChange)
	case putChange > callChange:
		if callChange < 0 {
			return models.SignalBullish, fmt.Sprintf("Call is weaker by %d", -callChange)
		}
		return models.SignalBullish, fmt.Sprintf("Put increased by %d", putChange)
	default:
		return models.SignalNone, ""
	}
}

// confirmTrend compares the new signal against the two newest prior entries.
// With fewer than two prior entries the previous trend carries over.
// Two empty signals in a row count as a match.
func confirmTrend(st models.TrackerState, signal models.Signal) models.Trend {
	if len(st.Entries) < 2 {
		return st.Trend
	}
	if st.Entries[0].Signal == signal && st.Entries[1].Signal == signal {
		return models.TrendConfirmed
	}
	return models.TrendUnconfirmed
}

func tradeSignal(trend models.Trend, signal models.Signal) models.TradeSignal {
	switch {
	case trend != models.TrendConfirmed:
		return models.TradeWait
	case signal == models.SignalBullish:
		return models.TradeCallBuy
	default:
		return models.TradePutBuy
	}
}

func setPrevious(st *models.TrackerState, e models.Entry) {
	put, call, diff := e.Put, e.Call, e.Difference
	st.PreviousPut = &put
	st.PreviousCall = &call
	st.PreviousDifference = &diff
}

func signed(v int64) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

func (t *Tracker) save(ctx context.Context, entries []models.Entry) error {
	b, err := json.Marshal(models.Record{Data: entries})
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := t.store.Set(ctx, t.config.Key, b); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

func (t *Tracker) discard(ctx context.Context) {
	if err := t.store.Delete(ctx, t.config.Key); err != nil {
		logger.Warn("Failed to delete history: %v", err)
	}
}
