// seed inserts development sample data: a small menu, a few reviews and one admin user.
// Idempotent: rows that already exist (by id or email) are skipped.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"bistro-boss/backend/internal/config"
	"bistro-boss/backend/internal/db"
	menudomain "bistro-boss/backend/internal/menu/domain"
	menurepo "bistro-boss/backend/internal/menu/repository"
	reviewdomain "bistro-boss/backend/internal/review/domain"
	reviewrepo "bistro-boss/backend/internal/review/repository"
	userdomain "bistro-boss/backend/internal/user/domain"
	userrepo "bistro-boss/backend/internal/user/repository"
)

const (
	adminEmail = "admin@bistro.dev"
	adminID    = "seed-admin-001"
)

var menuItems = []menudomain.Item{
	{ID: "seed-menu-001", Name: "Caesar Salad", Recipe: "Romaine, parmesan, croutons, anchovy dressing", Category: "salad", Price: 9.5},
	{ID: "seed-menu-002", Name: "Margherita", Recipe: "Tomato, mozzarella, basil", Category: "pizza", Price: 12},
	{ID: "seed-menu-003", Name: "Tomato Soup", Recipe: "Roasted tomatoes, cream, thyme", Category: "soup", Price: 6.75},
	{ID: "seed-menu-004", Name: "Chocolate Lava Cake", Recipe: "Dark chocolate, butter, eggs", Category: "dessert", Price: 7.25},
	{ID: "seed-menu-005", Name: "Lemonade", Recipe: "Lemon, cane sugar, mint", Category: "drinks", Price: 3.5},
	{ID: "seed-menu-006", Name: "Chef's Special Risotto", Recipe: "Arborio rice, porcini, parmesan", Category: "offered", Price: 15.9},
}

var reviews = []reviewdomain.Review{
	{ID: "seed-review-001", Name: "Jane Cooper", Details: "Best lava cake in town.", Rating: 5},
	{ID: "seed-review-002", Name: "Wade Warren", Details: "Fast delivery, soup still hot.", Rating: 4},
	{ID: "seed-review-003", Name: "Esther Howard", Details: "Pizza crust could be crispier.", Rating: 3.5},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	now := time.Now().UTC()
	menu := menurepo.NewPostgresRepository(conn)
	var added int
	for i := range menuItems {
		item := menuItems[i]
		item.CreatedAt = now
		ok, err := created(menu.Create(ctx, &item))
		if err != nil {
			log.Fatalf("create menu item %s: %v", item.ID, err)
		}
		if ok {
			added++
		}
	}
	log.Printf("menu: %d added, %d already present", added, len(menuItems)-added)

	rv := reviewrepo.NewPostgresRepository(conn)
	added = 0
	for i := range reviews {
		r := reviews[i]
		r.CreatedAt = now
		ok, err := created(rv.Create(ctx, &r))
		if err != nil {
			log.Fatalf("create review %s: %v", r.ID, err)
		}
		if ok {
			added++
		}
	}
	log.Printf("reviews: %d added, %d already present", added, len(reviews)-added)

	users := userrepo.NewPostgresRepository(conn)
	ok, err := created(users.Create(ctx, &userdomain.User{
		ID:        adminID,
		Email:     adminEmail,
		Name:      "Bistro Admin",
		Role:      userdomain.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if ok {
		log.Printf("admin user %s created", adminEmail)
	} else {
		log.Printf("admin user %s already present", adminEmail)
	}
}

// created treats a unique conflict as an already-applied seed row.
func created(err error) (bool, error) {
	if errors.Is(err, db.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}
