package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// table describes how one CSV file maps onto a table.
type table struct {
	name     string
	file     string
	columns  []string
	conflict []string
}

// tables are listed in foreign key order.
var tables = []table{
	{name: "brands", file: "brands.csv", columns: []string{"id", "name"}, conflict: []string{"id"}},
	{name: "stores", file: "stores.csv", columns: []string{"id", "name"}, conflict: []string{"id"}},
	{name: "products", file: "products.csv", columns: []string{"id", "sku", "name", "brand_id", "category"}, conflict: []string{"id"}},
	{name: "customers", file: "customers.csv", columns: []string{"id", "first_name", "last_name", "created_at"}, conflict: []string{"id"}},
	{name: "sales_orders", file: "sales_orders.csv", columns: []string{"id", "customer_id", "store_id", "order_date", "total_amount", "status"}, conflict: []string{"id"}},
	{name: "sales_order_items", file: "sales_order_items.csv", columns: []string{"id", "order_id", "product_id", "quantity", "total_price"}, conflict: []string{"id"}},
	{name: "inventory", file: "inventory.csv", columns: []string{
		"product_id", "location_id", "quantity_on_hand", "quantity_available",
		"reorder_level", "max_stock_level", "cost_per_unit",
	}, conflict: []string{"product_id", "location_id"}},
}

func (t table) upsertQuery() string {
	placeholders := make([]string, len(t.columns))
	quoted := make([]string, len(t.columns))
	for i, col := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		quoted[i] = `"` + col + `"`
	}

	isKey := make(map[string]bool, len(t.conflict))
	for _, col := range t.conflict {
		isKey[col] = true
	}
	updates := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		if !isKey[col] {
			updates = append(updates, fmt.Sprintf(`"%s" = EXCLUDED."%s"`, col, col))
		}
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		t.name,
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(t.conflict, ", "),
		strings.Join(updates, ", "),
	)
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) interface{} {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}

// seedTable upserts every record of r into t. Columns are matched by header
// name so the CSV may carry extra columns in any order.
func seedTable(ctx context.Context, tx execer, t table, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s header: %w", t.file, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	positions := make([]int, len(t.columns))
	for i, col := range t.columns {
		pos, ok := index[col]
		if !ok {
			return 0, fmt.Errorf("column %q not found in %s header: %v", col, t.file, header)
		}
		positions[i] = pos
	}

	query := t.upsertQuery()
	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read %s record: %w", t.file, err)
		}

		args := make([]interface{}, len(positions))
		for i, pos := range positions {
			if pos >= len(record) {
				return count, fmt.Errorf("%s line %d: missing column %q", t.file, count+2, t.columns[i])
			}
			args[i] = nullIfEmpty(record[pos])
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return count, fmt.Errorf("failed to upsert %s: %w", t.name, err)
		}
		count++
	}
	return count, nil
}

// seedDir loads every table whose CSV exists in dir; missing files are skipped.
func seedDir(ctx context.Context, tx execer, dir string) error {
	for _, t := range tables {
		path := filepath.Join(dir, t.file)
		file, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("table", t.name).Str("file", path).Msg("seed file missing, skipping")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", path, err)
		}

		n, err := seedTable(ctx, tx, t, file)
		file.Close()
		if err != nil {
			return err
		}
		log.Info().Str("table", t.name).Int("rows", n).Msg("seeded")
	}
	return nil
}
