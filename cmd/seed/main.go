// Command seed populates a fresh data directory with a starter menu,
// drink options and staff accounts. Safe to re-run: items and users are
// upserted by ID and username.
package main

import (
	"encoding/json"
	"flag"
	"log"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/comanda-pos/api/internal/store"
	"github.com/comanda-pos/api/internal/user"
)

func main() {
	dataDir := flag.String("data", "./data", "data directory")
	flag.Parse()

	db, err := store.Open(*dataDir)
	if err != nil {
		log.Fatalf("FATAL: open store: %v", err)
	}
	defer db.Close()

	// Debounce of zero keeps the outbox in manual flush mode.
	outbox := store.NewOutbox(db, 0)

	catalog := menu.NewCatalog(outbox, enum.SectionMenuItems, enum.SectionDrinkOptions)
	users := user.NewStore(outbox, enum.SectionUsers)

	if data, err := db.Get(enum.SectionMenuItems); err == nil && len(data) > 0 {
		var items []menu.Item
		if err := json.Unmarshal(data, &items); err == nil {
			catalog.Load(items, nil)
		}
	}
	if data, err := db.Get(enum.SectionUsers); err == nil && len(data) > 0 {
		if err := users.Load(data); err != nil {
			log.Fatalf("FATAL: load users: %v", err)
		}
	}

	outbox.Register(enum.SectionMenuItems, func() ([]byte, error) {
		items, _ := catalog.Snapshot()
		return json.Marshal(items)
	})
	outbox.Register(enum.SectionDrinkOptions, func() ([]byte, error) {
		_, drinks := catalog.Snapshot()
		return json.Marshal(drinks)
	})
	outbox.Register(enum.SectionUsers, users.Snapshot)

	for _, item := range starterMenu() {
		catalog.Upsert(item)
	}
	catalog.SetDrinkOptions([]string{
		"Agua", "Agua con gas", "Coca Cola", "Coca Cola Zero",
		"Fanta Naranja", "Fanta Limón", "Cerveza", "Vino tinto",
	})

	seedUser(users, "admin", "Administrador", enum.UserRoleAdmin, "1234")
	seedUser(users, "maria", "María García", enum.UserRoleWaiter, "1111")
	seedUser(users, "chen", "Chen Wei", enum.UserRoleKitchen, "2222")

	if err := outbox.Flush(); err != nil {
		log.Fatalf("FATAL: flush: %v", err)
	}
	log.Println("seed complete")
}

func seedUser(users *user.Store, username, fullName, role, pin string) {
	if _, err := users.Get(username); err == nil {
		return // keep existing account and PIN
	}
	if _, err := users.Upsert(username, fullName, role, pin); err != nil {
		log.Fatalf("FATAL: seed user %s: %v", username, err)
	}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func starterMenu() []menu.Item {
	return []menu.Item{
		{
			ID:       "ensalada-mixta",
			Name:     menu.LocalizedName{ES: "Ensalada mixta", EN: "Mixed salad", ZH: "什锦沙拉"},
			Category: enum.CategoryStarters,
			Price:    price("6.50"),
			Enabled:  true,
		},
		{
			ID:       "croquetas",
			Name:     menu.LocalizedName{ES: "Croquetas caseras", EN: "Homemade croquettes", ZH: "自制炸丸子"},
			Category: enum.CategoryStarters,
			Price:    price("7.00"),
			Enabled:  true,
		},
		{
			ID:          "arroz-tres-delicias",
			Name:        menu.LocalizedName{ES: "Arroz tres delicias", EN: "Fried rice", ZH: "扬州炒饭"},
			Category:    enum.CategoryMainDishes,
			Price:       price("8.50"),
			AllowExtras: true,
			Enabled:     true,
		},
		{
			ID:          "tallarines-salteados",
			Name:        menu.LocalizedName{ES: "Tallarines salteados", EN: "Stir-fried noodles", ZH: "炒面"},
			Category:    enum.CategoryMainDishes,
			Price:       price("9.00"),
			AllowExtras: true,
			Enabled:     true,
		},
		{
			ID:       "pollo-limon",
			Name:     menu.LocalizedName{ES: "Pollo al limón", EN: "Lemon chicken", ZH: "柠檬鸡"},
			Category: enum.CategoryMainDishes,
			Price:    price("10.50"),
			Enabled:  true,
		},
		{
			ID:       "helado-frito",
			Name:     menu.LocalizedName{ES: "Helado frito", EN: "Fried ice cream", ZH: "炸冰淇淋"},
			Category: enum.CategoryDesserts,
			Price:    price("4.50"),
			Enabled:  true,
		},
		{
			ID:       "menu-del-dia",
			Name:     menu.LocalizedName{ES: "Menú del día", EN: "Menu of the day", ZH: "今日套餐"},
			Category: enum.CategoryMenuOfDay,
			Price:    price("12.90"),
			Enabled:  true,
		},
		{
			ID:       "refresco",
			Name:     menu.LocalizedName{ES: "Refresco", EN: "Soft drink", ZH: "饮料"},
			Category: enum.CategoryDrinks,
			Price:    price("2.20"),
			Enabled:  true,
		},
	}
}
