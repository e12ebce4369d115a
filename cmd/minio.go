package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"melodex/config"
	"melodex/storage"
)

var (
	minioPrefix string
	minioStats  bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the audio object store",
	Long:  `List the objects in the configured bucket, optionally filtered by prefix, or print aggregate statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		ctx := context.Background()
		store, err := storage.NewMinioStore(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		objects, err := store.List(ctx, minioPrefix)
		if err != nil {
			log.Fatalf("Failed to list objects: %v", err)
		}

		if minioStats {
			var total int64
			for _, obj := range objects {
				total += obj.Size
			}
			fmt.Printf("%d objects, %.2f MB total\n", len(objects), float64(total)/(1024*1024))
			return
		}

		for _, obj := range objects {
			fmt.Printf("%-60s %10d  %s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("%d objects\n", len(objects))
	},
}

func init() {
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "object key prefix to filter by")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "print aggregate statistics only")
	rootCmd.AddCommand(minioCmd)
}
