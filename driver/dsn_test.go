package driver

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ledger"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name  string
		dsn   string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "bare path",
			dsn:  "main.bean",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "main.bean", cfg.Path)
				assert.Equal(t, ledger.BookingFIFO, cfg.Ledger.BookingMethod)
				assert.True(t, cfg.Ledger.BalanceTolerance.Equal(decimal.NewFromFloat(0.005)))
				assert.False(t, cfg.Ledger.StrictAccounts)
			},
		},
		{
			name: "all options",
			dsn:  "ledger/main.bean?booking_method=strict&balance_tolerance=0.01&strict_accounts=true",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ledger/main.bean", cfg.Path)
				assert.Equal(t, ledger.BookingStrict, cfg.Ledger.BookingMethod)
				assert.True(t, cfg.Ledger.BalanceTolerance.Equal(decimal.RequireFromString("0.01")))
				assert.True(t, cfg.Ledger.StrictAccounts)
			},
		},
		{
			name: "path with spaces escaped in options",
			dsn:  "my ledger.bean?booking_method=average",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "my ledger.bean", cfg.Path)
				assert.Equal(t, ledger.BookingAverage, cfg.Ledger.BookingMethod)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseDSN(tt.dsn)
			assert.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParseDSN_Errors(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{name: "empty", dsn: ""},
		{name: "empty path with options", dsn: "?booking_method=fifo"},
		{name: "unknown option", dsn: "main.bean?no_such_option=1"},
		{name: "invalid booking method", dsn: "main.bean?booking_method=lifo"},
		{name: "invalid tolerance", dsn: "main.bean?balance_tolerance=lots"},
		{name: "malformed query", dsn: "main.bean?a=%zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDSN(tt.dsn)
			assert.Error(t, err)
		})
	}
}

func TestConfig_CacheKeyVariesWithOptions(t *testing.T) {
	base, err := ParseDSN("main.bean")
	assert.NoError(t, err)
	strict, err := ParseDSN("main.bean?booking_method=strict")
	assert.NoError(t, err)

	assert.NotEqual(t, base.cacheKey(), strict.cacheKey())
}
