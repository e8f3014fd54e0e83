// Package main 将 JSON 数据集导入 PostgreSQL few-shot 示例库
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"linkedin-post-ai/internal/config"
	"linkedin-post-ai/internal/infrastructure/persistence/file"
	"linkedin-post-ai/internal/wire"
)

func main() {
	_ = godotenv.Load()

	var (
		dataFile string
		dryRun   bool
	)

	rootCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Seed the few-shot post store from the processed posts dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dataFile == "" {
				dataFile = cfg.FewShot.DataFile
			}
			if dryRun {
				return inspect(cmd, dataFile)
			}
			return seed(cmd.Context(), cmd, cfg, dataFile)
		},
	}
	rootCmd.Flags().StringVar(&dataFile, "data", "", "path to the processed posts JSON dataset (defaults to fewshot.data_file)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the dataset and print the topic catalog without touching the database")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// inspect 仅校验数据集
func inspect(cmd *cobra.Command, path string) error {
	repo, err := file.NewFewShotRepository(path)
	if err != nil {
		return err
	}
	tags, err := repo.ListTags(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Dataset %s is valid; %d topics: %v\n", path, len(tags), tags)
	return nil
}

func seed(ctx context.Context, cmd *cobra.Command, cfg *config.Config, path string) error {
	cmd.Println("Starting few-shot bootstrap...")

	// 1. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize data layer: %w", err)
	}
	defer cleanup()

	// 2. 建表
	if err := dataLayer.FewShotRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// 3. 读取数据集
	posts, err := file.LoadPosts(path)
	if err != nil {
		return err
	}
	cmd.Printf("Loaded %d posts from %s\n", len(posts), path)

	// 4. 单事务写入，按正文去重
	var created, updated int
	err = dataLayer.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, p := range posts {
			isNew, err := dataLayer.FewShotRepo.Upsert(ctx, p)
			if err != nil {
				return err
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import posts: %w", err)
	}

	tags, err := dataLayer.FewShotRepo.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	cmd.Printf("Imported posts: %d created, %d updated; %d topics available.\n", created, updated, len(tags))
	cmd.Println("Bootstrap completed successfully.")
	return nil
}
