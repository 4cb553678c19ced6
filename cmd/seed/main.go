package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tax-filing-service/internal/config"
	pg "tax-filing-service/internal/infra/db/postgres"
	"tax-filing-service/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	packRepo := pg.NewPackRepo(pool)
	packUC := usecase.NewPackUseCase(packRepo)

	// If packs already exist, do nothing
	packs, err := packUC.List(ctx)
	if err != nil {
		log.Fatalf("list packs: %v", err)
	}
	if len(packs) > 0 {
		fmt.Printf("%d packs already present. No changes.\n", len(packs))
		for _, p := range packs {
			fmt.Printf("  - %s (quota=%d, premium=%v, price=%d cents)\n", p.Name, p.SubmissionQuota, p.IsPremium, p.PriceCents)
		}
		return
	}

	// Seed the free pack plus a few paid catalog entries
	seed := []struct {
		Name        string
		Description string
		Price       int64
		Quota       int
		Premium     bool
	}{
		{"Free", "One standard submission to try the service", 0, 1, false},
		{"Standard 3", "Three standard submissions", 29_90, 3, false},
		{"Premium", "One premium submission with full broker coverage", 49_90, 1, true},
		{"Premium 5", "Five premium submissions", 199_00, 5, true},
	}

	for _, s := range seed {
		p, err := packUC.Create(ctx, s.Name, s.Description, s.Price, s.Quota, s.Premium)
		if err != nil {
			log.Fatalf("create pack %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, quota=%d, premium=%v, price=%d cents)\n", p.Name, p.ID, p.SubmissionQuota, p.IsPremium, p.PriceCents)
	}

	fmt.Println("✅ Seeding complete.")
}
