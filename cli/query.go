package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"

	_ "github.com/robinvdvleuten/beansql/driver"
	"github.com/robinvdvleuten/beansql/telemetry"
)

type QueryCmd struct {
	File string `help:"Ledger input file." arg:"" type:"existingfile"`
	SQL  string `help:"SQL to run; prompts interactively when omitted." arg:"" optional:""`

	bookingFlags
}

func (cmd *QueryCmd) Run(ctx *kong.Context, globals *Globals) error {
	sqlText := cmd.SQL
	if sqlText == "" {
		if !isTerminal() {
			return fmt.Errorf("no SQL given and stdin is not a terminal")
		}
		prompt := huh.NewText().
			Title("SQL").
			Description("Tables: accounts, transactions, postings, balances, prices, events, diagnostics").
			Value(&sqlText)
		if err := prompt.Run(); err != nil {
			return err
		}
		if sqlText == "" {
			return nil
		}
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)
		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr)
		}()
	}

	span := telemetry.FromContext(runCtx).Start("Query " + cmd.File)
	defer span.End()

	db, err := sql.Open("beansql", cmd.dsn())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(runCtx, sqlText)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}
	defer func() { _ = rows.Close() }()

	headers, err := rows.Columns()
	if err != nil {
		return err
	}

	var records [][]string
	for rows.Next() {
		cells := make([]any, len(headers))
		for i := range cells {
			cells[i] = new(any)
		}
		if err := rows.Scan(cells...); err != nil {
			return err
		}
		record := make([]string, len(headers))
		for i, cell := range cells {
			record[i] = formatCell(*cell.(*any))
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	renderTable(ctx.Stdout, headers, records)
	printInfof(ctx.Stderr, "%d row(s)", len(records))
	return nil
}

func (cmd *QueryCmd) dsn() string {
	params := url.Values{}
	params.Set("booking_method", cmd.BookingMethod)
	params.Set("balance_tolerance", cmd.BalanceTolerance)
	if cmd.StrictAccounts {
		params.Set("strict_accounts", "true")
	}
	return cmd.File + "?" + params.Encode()
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
