package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tomora/internal/config"
	"github.com/dropDatabas3/tomora/internal/security/password"
	"github.com/dropDatabas3/tomora/internal/store/core"
	"github.com/dropDatabas3/tomora/internal/store/pg"
)

// CLI de siembra: crea usuarios directamente contra Postgres, con el hash
// argon2id que espera el login. No pasa por la API.
func main() {
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "seed",
		Short: "Siembra datos en la base de Tomora",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "ruta al config.yaml (opcional)")

	var (
		email       string
		pass        string
		name        string
		isMedicated bool
		isCaregiver bool
	)
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Crea un usuario con password argon2id",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(strings.ToLower(email))
			if email == "" || pass == "" {
				return fmt.Errorf("--email y --password son obligatorios")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("seed requiere storage.driver=postgres (driver actual: %s)", cfg.Storage.Driver)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			store, err := pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{
				MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
				MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
				ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
			})
			if err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			defer store.Close()

			if cfg.Flags.Migrate {
				if err := store.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			hash, err := password.Hash(password.Default, pass)
			if err != nil {
				return fmt.Errorf("hash: %w", err)
			}

			u := &core.User{
				Email:        email,
				Name:         name,
				PasswordHash: hash,
				IsMedicated:  isMedicated,
				IsCaregiver:  isCaregiver,
			}
			if err := store.CreateUser(ctx, u); err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			fmt.Printf("usuario creado: id=%s email=%s\n", u.ID, u.Email)
			return nil
		},
	}
	userCmd.Flags().StringVar(&email, "email", "", "email del usuario")
	userCmd.Flags().StringVar(&pass, "password", "", "password en claro (se guarda hasheado)")
	userCmd.Flags().StringVar(&name, "name", "", "nombre para mostrar")
	userCmd.Flags().BoolVar(&isMedicated, "medicated", true, "el usuario toma medicación")
	userCmd.Flags().BoolVar(&isCaregiver, "caregiver", false, "el usuario es cuidador")

	root.AddCommand(userCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
