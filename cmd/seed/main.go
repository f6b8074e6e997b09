// Package main implements a one-shot seeder that loads the perfume catalog
// into PostgreSQL. Product IDs are derived from the name and volume, so
// rerunning the seeder updates products in place instead of duplicating them.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ronjeternate/BizarreAdventure/internal/config"
	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/internal/pricing"
	pgrepo "github.com/ronjeternate/BizarreAdventure/internal/repository/postgres"
	"github.com/ronjeternate/BizarreAdventure/migrations"
	"github.com/ronjeternate/BizarreAdventure/pkg/database"
	"github.com/ronjeternate/BizarreAdventure/pkg/logger"
)

type productDef struct {
	name     string
	gender   string
	volume   string
	imageURL string
}

var catalog = []productDef{
	{"Lacoste Black / Taper Men", domain.GenderMen, domain.Volume30ml, "https://i.imgur.com/VWKeqN0.jpeg"},
	{"Cool off Water / Quiff Men", domain.GenderMen, domain.Volume30ml, "https://i.imgur.com/zMNIMgh.jpeg"},
	{"Polo Sport / Buzz Men", domain.GenderMen, domain.Volume30ml, "https://i.imgur.com/RfBXRFE.jpeg"},
	{"Lacoste Red / Temple Men", domain.GenderMen, domain.Volume30ml, "https://i.imgur.com/QTPhrYl.jpeg"},
	{"Drakkar Noir / Slick Men", domain.GenderMen, domain.Volume30ml, "https://i.imgur.com/I2yXcbp.jpeg"},
	{"Dior Sauvage / Mullet Men", domain.GenderMen, domain.Volume30ml, "https://i.imgur.com/Eh1gLcp.jpeg"},
	{"Versace Eros / Afro Men", domain.GenderMen, domain.Volume65ml, "https://i.imgur.com/6W7pjl2.jpeg"},
	{"Chanel N°5 / Athena Women", domain.GenderWomen, domain.Volume30ml, "https://i.imgur.com/ppKN9Gf.jpeg"},
	{"Miss Dior / Antheia Women", domain.GenderWomen, domain.Volume30ml, "https://i.imgur.com/El8GBlN.jpeg"},
	{"Meow Katy Perry / Florise Women", domain.GenderWomen, domain.Volume30ml, "https://i.imgur.com/NuAjpfj.jpeg"},
	{"Bath & Body Works Sweet Pea / Aphrora Women", domain.GenderWomen, domain.Volume30ml, "https://i.imgur.com/bH1pjwV.jpeg"},
	{"Lacoste Pink / Hygea Women", domain.GenderWomen, domain.Volume30ml, "https://i.imgur.com/RJiZf6w.jpeg"},
	{"CH Good Girl / Enchante Women", domain.GenderWomen, domain.Volume30ml, "https://i.imgur.com/9KTQdR8.jpeg"},
	{"A G Cloud / Cloud Women", domain.GenderWomen, domain.Volume30ml, "https://i.imgur.com/xRdYY48.jpeg"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresConfig(), log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := pgrepo.NewProductRepository(pool)
	now := time.Now().UTC()

	for _, def := range catalog {
		price, err := pricing.Resolve(def.volume, def.gender)
		if err != nil {
			log.Error("failed to resolve price",
				slog.String("name", def.name),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}

		product := &domain.Product{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(def.name+"/"+def.volume)).String(),
			Name:      def.name,
			Gender:    def.gender,
			Volume:    def.volume,
			Price:     price,
			ImageURL:  def.imageURL,
			CreatedAt: now,
		}

		if err := repo.Upsert(ctx, product); err != nil {
			log.Error("failed to upsert product",
				slog.String("name", def.name),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}

		log.Info("seeded product",
			slog.String("id", product.ID),
			slog.String("name", product.Name),
			slog.Int64("price", product.Price),
		)
	}

	log.Info("catalog seeded", slog.Int("products", len(catalog)))
}
