// cmd/seeduser/main.go: creates/updates the admin user and the base districts.
// Uso: go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"os"

	"aguaya/internal/config"
	"aguaya/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// distritos base with their delivery fee.
var distritos = map[string]string{
	"Miraflores":             "2.00",
	"San Isidro":             "2.00",
	"Surco":                  "1.50",
	"San Juan de Lurigancho": "1.00",
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	username := envOr("SEED_ADMIN_USER", "admin")
	password := envOr("SEED_ADMIN_PASSWORD", "aguaya2026")
	nombre := "Administrador"
	rol := "administrador"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx := context.Background()
	result := db.WithContext(ctx).Exec(`
		INSERT INTO usuarios (username, nombre, password_hash, rol)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre = EXCLUDED.nombre,
		    rol = EXCLUDED.rol,
		    activo = true
	`, username, nombre, string(hash), rol)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert usuario error")
	}

	for distrito, tarifa := range distritos {
		if err := db.WithContext(ctx).Exec(`
			INSERT INTO distritos (nombre, tarifa_delivery)
			VALUES (?, ?)
			ON CONFLICT (nombre) DO NOTHING
		`, distrito, tarifa).Error; err != nil {
			log.Fatal().Err(err).Str("distrito", distrito).Msg("insert distrito error")
		}
	}

	fmt.Printf("Usuario '%s' creado/actualizado, %d distritos base\n", username, len(distritos))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
