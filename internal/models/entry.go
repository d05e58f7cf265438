// Package models defines the core domain entities: history entries, signals, and display rows.
package models

import (
	"errors"
	"time"
)

// Signal is the directional lean derived from comparing put and call deltas.
type Signal string

const (
	SignalNone    Signal = ""
	SignalBullish Signal = "Bullish"
	SignalBearish Signal = "Bearish"
)

// TradeSignal is the final recommendation shown for an entry.
type TradeSignal string

const (
	TradeWait    TradeSignal = "No Trade (Waiting for trend confirmation)"
	TradeCallBuy TradeSignal = "Call Buy / Put Sell"
	TradePutBuy  TradeSignal = "Put Buy / Call Sell"
)

// TimeLayout is the hour:minute layout of Entry.Time.
const TimeLayout = "15:04"

// Entry is one recorded analysis result.
// JSON field names match the persisted history record.
type Entry struct {
	Time             string      `json:"time"`
	Timestamp        *time.Time  `json:"timestamp,omitempty"`
	Put              int64       `json:"put"`
	Call             int64       `json:"call"`
	Difference       int64       `json:"difference"`
	DifferenceChange int64       `json:"differenceChange"`
	PutChange        int64       `json:"putChange"`
	CallChange       int64       `json:"callChange"`
	Signal           Signal      `json:"signal"`
	Weakness         string      `json:"weakness"`
	TradeSignal      TradeSignal `json:"tradeSignal"`
}

// MaxReading bounds the magnitude of a put or call reading. Sums and
// differences of readings in range cannot overflow int64.
const MaxReading = 1<<53 - 1

// Validate checks entry field constraints.
func (e *Entry) Validate() error {
	if e.Time == "" {
		return errors.New("entry time must not be empty")
	}
	if e.Put < -MaxReading || e.Put > MaxReading || e.Call < -MaxReading || e.Call > MaxReading {
		return errors.New("put and call must be within MaxReading")
	}
	if e.Difference != e.Put-e.Call {
		return errors.New("difference must equal put - call")
	}
	switch e.Signal {
	case SignalNone, SignalBullish, SignalBearish:
	default:
		return errors.New("signal must be Bullish, Bearish or empty")
	}
	switch e.TradeSignal {
	case TradeWait, TradeCallBuy, TradePutBuy:
	default:
		return errors.New("unknown trade signal")
	}
	return nil
}

// Record is the JSON document mirrored into the key-value store.
type Record struct {
	Data []Entry `json:"data"`
}
