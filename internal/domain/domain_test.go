package domain

import "testing"

func TestZeroMarketData(t *testing.T) {
	z := ZeroMarketData()
	if z.Price != "0" || z.MarketCap != "0" || z.Volume != "0" || z.ChangePercent24Hr != 0 {
		t.Fatalf("unexpected zero market data: %+v", z)
	}
}

func TestHistoryTimeframe(t *testing.T) {
	if !TimeframeWeek.IsValid() || HistoryTimeframe("2W").IsValid() {
		t.Fatal("timeframe validation broken")
	}
	if TimeframeMonth.Days() != 30 || TimeframeAll.Days() != 0 {
		t.Fatalf("unexpected days: %d %d", TimeframeMonth.Days(), TimeframeAll.Days())
	}
}

func TestQuoteIsExecutable(t *testing.T) {
	var nilQuote *Quote
	if nilQuote.IsExecutable() {
		t.Fatal("nil quote must not be executable")
	}
	rate := &Quote{ID: "rate"}
	if rate.IsExecutable() {
		t.Fatal("rate must not be executable")
	}
	firm := &Quote{ID: "quote", Executable: true, Receiver: "0xabc"}
	if !firm.IsExecutable() {
		t.Fatal("firm quote should be executable")
	}
}

func TestQuoteCloneDoesNotAliasSteps(t *testing.T) {
	q := Quote{Steps: []HopStep{{Source: "a"}}, LongtailData: &LongtailData{LongtailToL1ExpectedAmountOut: "1"}}
	c := q.Clone()
	c.Steps[0].Source = "b"
	c.LongtailData.LongtailToL1ExpectedAmountOut = "2"
	if q.Steps[0].Source != "a" || q.LongtailData.LongtailToL1ExpectedAmountOut != "1" {
		t.Fatalf("clone aliased original: %+v", q)
	}
}

func TestExecutionStateIsValid(t *testing.T) {
	if !HopAwaitingSwap.IsValid() || ExecutionState("nope").IsValid() {
		t.Fatal("execution state validation broken")
	}
}
