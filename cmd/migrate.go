package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"melodex/config"
	"melodex/db"
	"melodex/model"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Create the catalog tables and run the GORM migrations for the account tables, then exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.DB.Close()

		if err := db.InitDB(); err != nil {
			log.Fatalf("Failed to initialize catalog schema: %v", err)
		}
		fmt.Println("Catalog tables ready.")

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect with GORM: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrateModels(&model.User{}); err != nil {
			log.Fatalf("Failed to migrate account tables: %v", err)
		}
		fmt.Println("Account tables ready.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
