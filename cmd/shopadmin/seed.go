package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shopadmin/internal/backend"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample storefront data into the store",
	Long: `Writes a small set of sample products, orders and users, for trying
the dashboard out against a fresh store. Existing documents with the same
ids are overwritten.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout())
	defer cancel()

	products := map[string]map[string]any{
		"seed-shirt": {
			"name":        "Linen Shirt",
			"category":    "shirts",
			"price":       350000,
			"description": "Relaxed fit linen shirt",
			"colors":      []any{"white", "navy"},
			"sizes":       []any{"S", "M", "L"},
			"createdAt":   backend.ServerTimestamp,
		},
		"seed-jeans": {
			"name":       "Slim Jeans",
			"category":   "pants",
			"price":      520000,
			"desciption": "Stretch denim, slim cut", // legacy field spelling kept on purpose
			"colors":     []any{float64(255)},
			"createdAt":  backend.ServerTimestamp,
		},
		"seed-cap": {
			"name":            "Canvas Cap",
			"category":        "accessories",
			"price":           120000,
			"offerPercentage": 10,
			"createdAt":       backend.ServerTimestamp,
		},
	}
	for id, fields := range products {
		if err := store.Collection(backend.CollectionProducts).Doc(id).Set(ctx, fields); err != nil {
			return fmt.Errorf("seed product %s: %w", id, err)
		}
	}

	users := map[string]map[string]any{
		"seed-user-1": {"email": "linh@example.com", "displayName": "Linh Tran", "createdAt": backend.ServerTimestamp},
		"seed-user-2": {"email": "minh@example.com", "displayName": "Minh Pham", "createdAt": backend.ServerTimestamp},
	}
	for id, fields := range users {
		if err := store.Collection(backend.CollectionUsers).Doc(id).Set(ctx, fields); err != nil {
			return fmt.Errorf("seed user %s: %w", id, err)
		}
	}

	orders := map[string]map[string]any{
		"seed-order-1": {
			"orderId":     1001,
			"date":        "2025-06-02",
			"userId":      "seed-user-1",
			"orderStatus": "Pending",
			"products": []any{
				map[string]any{"name": "Linen Shirt", "quantity": 2, "price": 350000},
			},
			"shippingAddress": map[string]any{
				"name": "Linh Tran", "address": "12 Hang Bac", "district": "Hoan Kiem", "city": "Ha Noi",
			},
		},
		"seed-order-2": {
			"orderId":     1002,
			"date":        "2025-06-03",
			"userId":      "seed-user-2",
			"orderStatus": "Shipped",
			"products": []any{
				map[string]any{"name": "Slim Jeans", "quantity": 1, "totalPrice": 520000},
				map[string]any{"name": "Canvas Cap", "quantity": 1, "price": 108000},
			},
		},
	}
	for id, fields := range orders {
		if err := store.Collection(backend.CollectionOrders).Doc(id).Set(ctx, fields); err != nil {
			return fmt.Errorf("seed order %s: %w", id, err)
		}
	}

	logger.Info("sample data written",
		zap.Int("products", len(products)),
		zap.Int("users", len(users)),
		zap.Int("orders", len(orders)))
	fmt.Println("Sample data loaded.")
	return nil
}
