package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jshan/storefront-backend/config"
	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/app/repository"
	"github.com/jshan/storefront-backend/internal/db"
	"github.com/jshan/storefront-backend/pkg/util"
	"github.com/lib/pq"
	"github.com/xuri/excelize/v2"
)

// Imports a product catalog from an XLSX export and ensures an admin user
// exists. Expected columns: name, description, price_cents, stock_quantity,
// available, tags (comma separated), image_url.
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

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	if err := ensureAdminUser(); err != nil {
		log.Fatal("Failed to ensure admin user:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 4 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		if name == "" || seen[name] {
			skippedCount++
			continue
		}

		description := strings.TrimSpace(row[1])

		priceCents, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
		if err != nil || priceCents < 0 {
			skippedCount++
			continue
		}

		stock, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil || stock < 0 {
			skippedCount++
			continue
		}

		available := true
		if len(row) > 4 {
			v := strings.ToLower(strings.TrimSpace(row[4]))
			available = v != "false" && v != "0" && v != "no"
		}

		var tags pq.StringArray
		if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
			for _, tag := range strings.Split(row[5], ",") {
				if t := strings.TrimSpace(tag); t != "" {
					tags = append(tags, t)
				}
			}
		}

		imageURL := ""
		if len(row) > 6 {
			imageURL = strings.TrimSpace(row[6])
		}

		seen[name] = true
		products = append(products, model.Product{
			Name:          name,
			Description:   description,
			PriceCents:    priceCents,
			StockQuantity: stock,
			Available:     available,
			Tags:          tags,
			ImageURL:      imageURL,
		})
	}

	fmt.Printf("Skipped rows: %d\n", skippedCount)
	return products, nil
}

func ensureAdminUser() error {
	userRepo := repository.NewUserRepository(db.GetDB())

	email := getEnvOr("SEED_ADMIN_EMAIL", "admin@storefront.local")
	password := getEnvOr("SEED_ADMIN_PASSWORD", "changeme")

	if _, err := userRepo.FindByEmail(email); err == nil {
		fmt.Printf("Admin user already exists: %s\n", email)
		return nil
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}

	fmt.Printf("Admin user created: %s\n", email)
	return nil
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
