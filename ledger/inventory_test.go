package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func costedLot(t *testing.T, units, currency, cost, costCurrency, date string) *Lot {
	t.Helper()
	c := dec(t, cost)
	lot := &Lot{Units: dec(t, units), Currency: currency, Cost: &c, CostCurrency: costCurrency}
	if date != "" {
		lot.Date = ast.MustDate(date)
	}
	return lot
}

func TestInventory_AddMergesCostlessLots(t *testing.T) {
	inv := NewInventory()
	inv.Add(dec(t, "10"), "USD")
	inv.Add(dec(t, "-3"), "USD")
	inv.Add(dec(t, "5"), "EUR")

	assert.Equal(t, 2, len(inv.Lots()))
	assert.True(t, inv.Total("USD").Equal(dec(t, "7")))
	assert.True(t, inv.Total("EUR").Equal(dec(t, "5")))
	assert.Equal(t, []string{"EUR", "USD"}, inv.Currencies())
}

func TestInventory_AddMayGoNegative(t *testing.T) {
	inv := NewInventory()
	inv.Add(dec(t, "-25"), "USD")
	assert.True(t, inv.Total("USD").Equal(dec(t, "-25")))
}

func TestInventory_AddLotMergesSameBasis(t *testing.T) {
	inv := NewInventory()
	inv.AddLot(costedLot(t, "10", "HOOL", "100.00", "USD", "2023-01-02"))
	inv.AddLot(costedLot(t, "5", "HOOL", "100.00", "USD", "2023-01-02"))
	inv.AddLot(costedLot(t, "5", "HOOL", "110.00", "USD", "2023-01-03"))

	lots := inv.Lots()
	assert.Equal(t, 2, len(lots))
	assert.True(t, lots[0].Units.Equal(dec(t, "15")))
	assert.True(t, inv.Total("HOOL").Equal(dec(t, "20")))
}

func TestInventory_ReduceStrict(t *testing.T) {
	setup := func(t *testing.T) *Inventory {
		inv := NewInventory()
		inv.AddLot(costedLot(t, "10", "HOOL", "100.00", "USD", "2023-01-02"))
		inv.AddLot(costedLot(t, "10", "HOOL", "110.00", "USD", "2023-01-03"))
		return inv
	}

	t.Run("unambiguous spec", func(t *testing.T) {
		inv := setup(t)
		cost := dec(t, "110.00")
		consumed, err := inv.Reduce(dec(t, "4"), "HOOL", &lotSpec{cost: &cost}, BookingStrict)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(consumed))
		assert.True(t, consumed[0].Units.Equal(dec(t, "4")))
		assert.True(t, consumed[0].Cost.Equal(cost))
		assert.True(t, inv.Total("HOOL").Equal(dec(t, "16")))
	})

	t.Run("ambiguous spec", func(t *testing.T) {
		inv := setup(t)
		_, err := inv.Reduce(dec(t, "4"), "HOOL", &lotSpec{}, BookingStrict)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous")
	})

	t.Run("no match", func(t *testing.T) {
		inv := setup(t)
		cost := dec(t, "999.00")
		_, err := inv.Reduce(dec(t, "4"), "HOOL", &lotSpec{cost: &cost}, BookingStrict)
		assert.Error(t, err)
	})

	t.Run("insufficient units in matched lot", func(t *testing.T) {
		inv := setup(t)
		cost := dec(t, "100.00")
		_, err := inv.Reduce(dec(t, "12"), "HOOL", &lotSpec{cost: &cost}, BookingStrict)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot reduce")
	})
}

func TestInventory_ReduceFIFO(t *testing.T) {
	inv := NewInventory()
	// Inserted newest-first; FIFO must still consume by lot date.
	inv.AddLot(costedLot(t, "10", "HOOL", "110.00", "USD", "2023-01-03"))
	inv.AddLot(costedLot(t, "10", "HOOL", "100.00", "USD", "2023-01-02"))

	consumed, err := inv.Reduce(dec(t, "15"), "HOOL", &lotSpec{}, BookingFIFO)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(consumed))
	assert.True(t, consumed[0].Cost.Equal(dec(t, "100.00")))
	assert.True(t, consumed[0].Units.Equal(dec(t, "10")))
	assert.True(t, consumed[1].Cost.Equal(dec(t, "110.00")))
	assert.True(t, consumed[1].Units.Equal(dec(t, "5")))
	assert.True(t, inv.Total("HOOL").Equal(dec(t, "5")))
}

func TestInventory_ReduceFIFOInsufficient(t *testing.T) {
	inv := NewInventory()
	inv.AddLot(costedLot(t, "10", "HOOL", "100.00", "USD", "2023-01-02"))

	_, err := inv.Reduce(dec(t, "11"), "HOOL", &lotSpec{}, BookingFIFO)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot reduce")
	// The failed reduction must not consume anything.
	assert.True(t, inv.Total("HOOL").Equal(dec(t, "10")))
}

func TestInventory_ReduceAverage(t *testing.T) {
	inv := NewInventory()
	inv.AddLot(costedLot(t, "10", "HOOL", "100.00", "USD", "2023-01-02"))
	inv.AddLot(costedLot(t, "10", "HOOL", "120.00", "USD", "2023-01-03"))

	consumed, err := inv.Reduce(dec(t, "5"), "HOOL", nil, BookingAverage)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(consumed))
	assert.True(t, consumed[0].Cost.Equal(dec(t, "110")))
	assert.True(t, consumed[0].Units.Equal(dec(t, "5")))

	lots := inv.Lots()
	assert.Equal(t, 1, len(lots))
	assert.True(t, lots[0].Units.Equal(dec(t, "15")))
	assert.True(t, lots[0].Cost.Equal(dec(t, "110")))
}

func TestInventory_ReduceSkipsCostlessLots(t *testing.T) {
	inv := NewInventory()
	inv.Add(dec(t, "100"), "HOOL")
	inv.AddLot(costedLot(t, "10", "HOOL", "100.00", "USD", "2023-01-02"))

	consumed, err := inv.Reduce(dec(t, "5"), "HOOL", &lotSpec{}, BookingFIFO)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(consumed))
	assert.True(t, consumed[0].Cost.Equal(dec(t, "100.00")))

	// The costless position is untouched.
	assert.True(t, inv.Total("HOOL").Equal(dec(t, "105")))
}

func TestLot_String(t *testing.T) {
	costless := &Lot{Units: decimal.RequireFromString("10"), Currency: "USD"}
	assert.Equal(t, "10 USD", costless.String())

	lot := costedLot(t, "10", "HOOL", "100.00", "USD", "2023-01-02")
	lot.Label = "batch-1"
	assert.Equal(t, `10 HOOL {100.00 USD, 2023-01-02, "batch-1"}`, lot.String())
}
