package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ptnguyen/coffeecorner-backend/config"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
	"github.com/ptnguyen/coffeecorner-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Expected sheet layout, one product per row:
//
//	Name | Description | Category | Price | Discount | Stock | Price S | Price M | Price L
//
// Size price cells may be empty; at least one is required. Categories
// must be Coffees, Drinks, Foods or Yogurts.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d (skipped %d rows)\n", len(products), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := db.GetDB().CreateInBatches(products, 100).Error; err != nil {
		log.Fatal("Failed to import products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))

	if err := seedAdmin(); err != nil {
		log.Fatal("Failed to seed admin account:", err)
	}
}

func readProductsFromXLSX(filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 7 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		category := model.ProductCategory(strings.TrimSpace(row[2]))
		price := parseIntCell(cell(row, 3))
		discount := parseIntCell(cell(row, 4))
		stock := parseIntCell(cell(row, 5))

		if name == "" || price <= 0 || !model.ValidCategory(category) {
			skipped++
			continue
		}
		if discount < 0 || discount > 100 {
			skipped++
			continue
		}

		key := fmt.Sprintf("%s|%s", name, category)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		var sizes []model.ProductSize
		for j, label := range []string{"S", "M", "L"} {
			sizePrice := parseIntCell(cell(row, 6+j))
			if sizePrice > 0 {
				sizes = append(sizes, model.ProductSize{Size: label, Price: sizePrice})
			}
		}
		if len(sizes) == 0 {
			skipped++
			continue
		}

		products = append(products, model.Product{
			Name:        name,
			Description: description,
			Category:    category,
			Price:       price,
			Discount:    discount,
			Stock:       stock,
			Sizes:       sizes,
		})
	}

	return products, skipped, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseIntCell(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// seedAdmin creates the first back-office account when none exists.
// Credentials come from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD.
func seedAdmin() error {
	email := strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		fmt.Println("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.GetDB().Model(&model.Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fmt.Println("Admin account already exists, skipping")
		return nil
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.Admin{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
	}
	if err := db.GetDB().Create(&admin).Error; err != nil {
		return err
	}

	fmt.Printf("Admin account created: %s\n", email)
	return nil
}
