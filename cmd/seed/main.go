package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"

	"schooldirectory/internal/config"
	"schooldirectory/internal/database"
	"schooldirectory/internal/domain/school"
	"schooldirectory/internal/logger"
	"schooldirectory/internal/storage"
)

var (
	cities = []struct{ city, state string }{
		{"Mumbai", "Maharashtra"},
		{"Pune", "Maharashtra"},
		{"Bengaluru", "Karnataka"},
		{"Chennai", "Tamil Nadu"},
		{"Jaipur", "Rajasthan"},
		{"Kolkata", "West Bengal"},
	}
	prefixes = []string{"Green Valley", "St. Mary's", "Sunrise", "Little Flower", "Delhi Public", "Modern"}
	suffixes = []string{"High School", "Public School", "Academy", "Convent School"}
)

func main() {
	count := flag.Int("n", 30, "number of schools to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	db, err := database.Connect(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	defer database.Close(db)

	log.Info().Msg("Running AutoMigrate...")
	if err := school.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("AutoMigrate failed")
	}

	svc := school.NewService(school.NewRepository(db), storage.NewLocalStore(cfg.ContentDir()), cfg.MaxUploadBytes)

	ctx := context.Background()
	for i := 0; i < *count; i++ {
		loc := cities[rand.Intn(len(cities))]
		name := fmt.Sprintf("%s %s", prefixes[rand.Intn(len(prefixes))], suffixes[rand.Intn(len(suffixes))])
		created, err := svc.Create(ctx, school.CreateSchoolRequest{
			Name:    name,
			Address: fmt.Sprintf("%d Station Road", 10+i),
			City:    loc.city,
			State:   loc.state,
			Contact: fmt.Sprintf("98%08d", rand.Intn(100000000)),
			EmailID: fmt.Sprintf("office%d@example.edu", i+1),
		})
		if err != nil {
			log.Fatal().Err(err).Int("index", i).Msg("seed failed")
		}
		log.Debug().Int64("id", created.ID).Str("name", name).Msg("seeded")
	}

	log.Info().Int("count", *count).Msg("Seed completed")
}
