package models

// Trend records whether the last analysis confirmed a trend.
type Trend int

const (
	TrendUnconfirmed Trend = iota
	TrendConfirmed
)

func (t Trend) String() string {
	if t == TrendConfirmed {
		return "confirmed"
	}
	return "unconfirmed"
}

// TrackerState is the whole in-memory state of a tracker.
// PreviousPut, PreviousCall and PreviousDifference are all nil or all set,
// and when set they equal Entries[0].
type TrackerState struct {
	Entries []Entry

	PreviousPut        *int64
	PreviousCall       *int64
	PreviousDifference *int64

	Trend Trend
}

// IsEmpty reports whether the state holds no history.
func (s TrackerState) IsEmpty() bool {
	return len(s.Entries) == 0
}

// Row is the display projection of one Entry.
type Row struct {
	Number           int    `json:"number"`
	Time             string `json:"time"`
	Put              int64  `json:"put"`
	Call             int64  `json:"call"`
	Difference       int64  `json:"difference"`
	DifferenceChange string `json:"differenceChange,omitempty"`
	PutChange        string `json:"putChange"`
	CallChange       string `json:"callChange"`
	Signal           string `json:"signal"`
	Weakness         string `json:"weakness"`
	TradeSignal      string `json:"tradeSignal"`
}
