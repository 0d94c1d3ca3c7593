package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/yusapos/backend-pos/internal/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProfiles(db)
	seedSuppliers(db)
	seedProducts(db)
	seedCustomers(db)

	log.Println("Seeding completed successfully!")
}

func seedProfiles(db *sql.DB) {
	profiles := []struct {
		ID       string
		Username string
		FullName string
		Role     string
		PIN      string
	}{
		{"usr-admin", "admin", "Pemilik Toko", "admin", "123456"},
		{"usr-kasir1", "kasir1", "Rina Kasir", "cashier", "111111"},
		{"usr-kasir2", "kasir2", "Dodi Kasir", "cashier", "222222"},
	}

	fmt.Println("Seeding Profiles...")
	for _, p := range profiles {
		hash, err := auth.HashPIN(p.PIN)
		if err != nil {
			log.Fatalf("Failed to hash PIN for %s: %v", p.Username, err)
		}
		_, err = db.Exec(`
			INSERT INTO profiles (id, username, full_name, role, pin_hash)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (username) DO UPDATE SET
				full_name = EXCLUDED.full_name,
				role = EXCLUDED.role;
		`, p.ID, p.Username, p.FullName, p.Role, hash)
		if err != nil {
			log.Printf("Failed to seed profile %s: %v", p.Username, err)
		}
	}
}

func seedSuppliers(db *sql.DB) {
	suppliers := []struct {
		ID      string
		Name    string
		Contact string
		Phone   string
	}{
		{"sup-sembako-jaya", "Sembako Jaya", "Pak Herman", "081234567801"},
		{"sup-berkah-grosir", "Berkah Grosir", "Bu Yanti", "081234567802"},
		{"sup-sumber-rezeki", "Sumber Rezeki", "Pak Asep", "081234567803"},
	}

	fmt.Println("Seeding Suppliers...")
	for _, s := range suppliers {
		_, err := db.Exec(`
			INSERT INTO suppliers (id, name, contact, phone)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				contact = EXCLUDED.contact,
				phone = EXCLUDED.phone;
		`, s.ID, s.Name, s.Contact, s.Phone)
		if err != nil {
			log.Printf("Failed to seed supplier %s: %v", s.Name, err)
		}
	}
}

func seedProducts(db *sql.DB) {
	products := []struct {
		ID          string
		SKU         string
		Name        string
		Category    string
		Stock       int
		Cost        int64
		General     int64
		Agen        int64
		Distributor int64
		SupplierID  string
	}{
		{"prd-beras-5kg", "BRS-5KG", "Beras Premium 5kg", "sembako", 40, 58000, 68000, 65000, 62000, "sup-sembako-jaya"},
		{"prd-gula-1kg", "GLA-1KG", "Gula Pasir 1kg", "sembako", 80, 13500, 16000, 15000, 14500, "sup-sembako-jaya"},
		{"prd-minyak-2l", "MGR-2L", "Minyak Goreng 2L", "sembako", 60, 32000, 38000, 36000, 34500, "sup-berkah-grosir"},
		{"prd-telur-1kg", "TLR-1KG", "Telur Ayam 1kg", "sembako", 50, 24000, 28000, 27000, 26000, "sup-berkah-grosir"},
		{"prd-mie-dus", "MIE-DUS", "Mie Instan 1 Dus", "makanan", 30, 92000, 105000, 100000, 97000, "sup-sumber-rezeki"},
		{"prd-kopi-renceng", "KPI-RCG", "Kopi Sachet 1 Renceng", "minuman", 100, 9500, 12000, 11000, 10500, "sup-sumber-rezeki"},
		{"prd-sabun-batang", "SBN-BTG", "Sabun Mandi Batang", "toiletries", 120, 3200, 4500, 4000, 3800, "sup-berkah-grosir"},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products
				(id, sku, name, category, stock, cost_price, price_general, price_agen, price_distributor, supplier_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (sku) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				cost_price = EXCLUDED.cost_price,
				price_general = EXCLUDED.price_general,
				price_agen = EXCLUDED.price_agen,
				price_distributor = EXCLUDED.price_distributor,
				supplier_id = EXCLUDED.supplier_id;
		`, p.ID, p.SKU, p.Name, p.Category, p.Stock, p.Cost, p.General, p.Agen, p.Distributor, p.SupplierID)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
		}
	}
}

func seedCustomers(db *sql.DB) {
	customers := []struct {
		ID    string
		Name  string
		Phone string
		Type  string
	}{
		{"cst-warung-bu-sri", "Warung Bu Sri", "081298765401", "agen"},
		{"cst-toko-makmur", "Toko Makmur", "081298765402", "agen"},
		{"cst-cv-laris", "CV Laris Manis", "081298765403", "distributor"},
		{"cst-pak-budi", "Pak Budi", "081298765404", "general"},
	}

	fmt.Println("Seeding Customers...")
	for _, c := range customers {
		_, err := db.Exec(`
			INSERT INTO customers (id, name, phone, type, debt)
			VALUES ($1, $2, $3, $4, 0)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				phone = EXCLUDED.phone,
				type = EXCLUDED.type;
		`, c.ID, c.Name, c.Phone, c.Type)
		if err != nil {
			log.Printf("Failed to seed customer %s: %v", c.Name, err)
		}
	}
}
