package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// nullIfEmpty returns NULL if the string is empty, otherwise the value.
func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Apply the schema and seed the database with catalog data",
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Apply the database schema",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "schema-file",
						Usage:   "Path to the schema SQL file",
						Value:   "./migrations/schema.sql",
						EnvVars: []string{"SCHEMA_FILE"},
					},
				},
				Action: runSchema,
			},
			{
				Name:  "catalog",
				Usage: "Seed products, lots and sales history from CSV files",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing products.csv, lots.csv and sales.csv",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: runCatalogSeeder,
			},
			{
				Name:  "all",
				Usage: "Apply the schema, then seed catalog data",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "schema-file",
						Value:   "./migrations/schema.sql",
						EnvVars: []string{"SCHEMA_FILE"},
					},
					&cli.StringFlag{
						Name:    "data-dir",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: func(c *cli.Context) error {
					if err := runSchema(c); err != nil {
						return fmt.Errorf("error applying schema: %w", err)
					}
					if err := runCatalogSeeder(c); err != nil {
						return fmt.Errorf("error seeding catalog: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSchema(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	schema, err := os.ReadFile(c.String("schema-file"))
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	log.Printf("Applying schema from %s\n", c.String("schema-file"))
	if _, err := db.ExecContext(c.Context, string(schema)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Println("Schema applied successfully!")
	return nil
}

func runCatalogSeeder(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	dataDir := c.String("data-dir")
	ctx := c.Context

	// Start a transaction so a partial seed never lands.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting database seeding...")

	if err := seedProducts(ctx, tx, filepath.Join(dataDir, "products.csv")); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := seedLots(ctx, tx, filepath.Join(dataDir, "lots.csv")); err != nil {
		return fmt.Errorf("failed to seed lots: %w", err)
	}
	if err := seedSales(ctx, tx, filepath.Join(dataDir, "sales.csv")); err != nil {
		return fmt.Errorf("failed to seed sales: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// readCSVRows opens a CSV file and returns its data rows, minus the header.
func readCSVRows(filePath string, wantColumns int) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = wantColumns
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, record)
	}

	return rows, nil
}

// seedProducts upserts by SKU so re-running the seeder refreshes the catalog.
// Columns: name,sku,category,pack_size,lead_time_days,moq,unit_cost,shelf_life_days
func seedProducts(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding products from %s\n", filePath)

	rows, err := readCSVRows(filePath, 8)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO products (
			name, sku, category, pack_size, lead_time_days, moq,
			unit_cost, shelf_life_days, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			pack_size = EXCLUDED.pack_size,
			lead_time_days = EXCLUDED.lead_time_days,
			moq = EXCLUDED.moq,
			unit_cost = EXCLUDED.unit_cost,
			shelf_life_days = EXCLUDED.shelf_life_days,
			updated_at = NOW()
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare product statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range rows {
		packSize, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			return fmt.Errorf("invalid pack_size for sku %s: %w", record[1], err)
		}
		leadTime, err := strconv.Atoi(strings.TrimSpace(record[4]))
		if err != nil {
			return fmt.Errorf("invalid lead_time_days for sku %s: %w", record[1], err)
		}
		moq, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
		if err != nil {
			return fmt.Errorf("invalid moq for sku %s: %w", record[1], err)
		}
		unitCost, err := strconv.ParseFloat(strings.TrimSpace(record[6]), 64)
		if err != nil {
			return fmt.Errorf("invalid unit_cost for sku %s: %w", record[1], err)
		}
		shelfLife := 0
		if v := strings.TrimSpace(record[7]); v != "" {
			shelfLife, err = strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid shelf_life_days for sku %s: %w", record[1], err)
			}
		}

		if _, err := stmt.ExecContext(ctx,
			strings.TrimSpace(record[0]), // name
			strings.TrimSpace(record[1]), // sku
			strings.TrimSpace(record[2]), // category
			packSize,
			leadTime,
			moq,
			unitCost,
			shelfLife,
		); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", record[1], err)
		}
	}

	log.Printf("Successfully seeded products (%d records)\n", len(rows))
	return nil
}

// seedLots inserts lot rows, resolving the product by SKU.
// Columns: sku,lot_number,status,quantity_remaining,received_qty,received_date,expiry_date
func seedLots(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding lots from %s\n", filePath)

	rows, err := readCSVRows(filePath, 7)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO lots (
			product_id, lot_number, status, quantity_remaining,
			received_qty, received_date, expiry_date, created_at, updated_at
		)
		SELECT p.id, $2, $3, $4, $5, $6::timestamptz, $7::timestamptz, NOW(), NOW()
		FROM products p
		WHERE p.sku = $1
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare lot statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range rows {
		qty, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			return fmt.Errorf("invalid quantity_remaining for lot %s: %w", record[1], err)
		}
		receivedQty, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil {
			return fmt.Errorf("invalid received_qty for lot %s: %w", record[1], err)
		}

		res, err := stmt.ExecContext(ctx,
			strings.TrimSpace(record[0]), // sku
			strings.TrimSpace(record[1]), // lot_number
			strings.TrimSpace(record[2]), // status
			qty,
			receivedQty,
			nullIfEmpty(record[5]), // received_date
			nullIfEmpty(record[6]), // expiry_date
		)
		if err != nil {
			return fmt.Errorf("failed to insert lot %s: %w", record[1], err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("sku %s not found for lot %s", record[0], record[1])
		}
	}

	log.Printf("Successfully seeded lots (%d records)\n", len(rows))
	return nil
}

// seedSales upserts monthly sales keyed by (product, month).
// Columns: sku,month,quantity_sold
func seedSales(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding sales from %s\n", filePath)

	rows, err := readCSVRows(filePath, 3)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO sales_records (product_id, month, quantity_sold, created_at, updated_at)
		SELECT p.id, $2, $3, NOW(), NOW()
		FROM products p
		WHERE p.sku = $1
		ON CONFLICT (product_id, month) DO UPDATE SET
			quantity_sold = EXCLUDED.quantity_sold,
			updated_at = NOW()
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare sales statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range rows {
		qty, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return fmt.Errorf("invalid quantity_sold for sku %s: %w", record[0], err)
		}

		res, err := stmt.ExecContext(ctx,
			strings.TrimSpace(record[0]), // sku
			strings.TrimSpace(record[1]), // month
			qty,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert sales for sku %s: %w", record[0], err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("sku %s not found in sales row", record[0])
		}
	}

	log.Printf("Successfully seeded sales (%d records)\n", len(rows))
	return nil
}
