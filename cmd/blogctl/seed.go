package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/blogpress/internal/blog"
	"github.com/2beens/blogpress/internal/config"
	"github.com/2beens/blogpress/internal/db"
)

var (
	seedCount int
	seedValue int64
)

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 20, "number of posts to create")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "faker seed, 0 means random")
	RootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample blog posts into the configured mongo database",
	Args:  cobra.NoArgs,
	RunE:  seed,
}

func seed(cmd *cobra.Command, _ []string) error {
	if seedCount <= 0 {
		return fmt.Errorf("count must be positive, got %d", seedCount)
	}

	cfg, err := config.Load(envFlag, configFlag)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	mongoClient, err := db.NewMongoClient(ctx, db.NewMongoClientParams{
		URI:     cfg.MongoURI,
		AppName: "blogctl",
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warnf("disconnect mongo: %s", err)
		}
	}()

	repo := blog.NewRepo(mongoClient.Database(cfg.MongoDBName))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	faker := gofakeit.New(seedValue)
	for i := 0; i < seedCount; i++ {
		post := fakePost(faker)
		if err := repo.Create(ctx, post); err != nil {
			return fmt.Errorf("create post %d: %w", i, err)
		}
		log.Debugf("seeded post %s: %s", post.ID.Hex(), post.Title)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d posts into %s.%s\n", seedCount, cfg.MongoDBName, blog.CollectionName)
	return nil
}

// fakePost builds a post that passes blog.ValidatePost.
func fakePost(faker *gofakeit.Faker) *blog.Post {
	categories := blog.DefaultCategories()
	return &blog.Post{
		Title:    truncate(faker.Sentence(6), 200),
		Excerpt:  truncate(faker.Sentence(20), 500),
		Content:  faker.Paragraph(3, 5, 20, "\n\n"),
		Author:   faker.Name(),
		Category: categories[faker.Number(0, len(categories)-1)],
		Featured: faker.Number(0, 4) == 0,
		ReadTime: float64(faker.Number(1, 15)),
		Image:    faker.URL(),
	}
}

func truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return strings.TrimSpace(string(r[:max]))
}
