// tutorialctl is the administrative CLI for the tutorial collection. It
// drives the data layer SDK against the document service: list, inspect,
// create, update, and delete tutorials, plus local favorites management.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	prodigyfix "github.com/felipe-ssantos/prodigyfix"
	"github.com/felipe-ssantos/prodigyfix/imageurl"
	"github.com/felipe-ssantos/prodigyfix/internal/blobstore/gcs"
	"github.com/felipe-ssantos/prodigyfix/internal/config"
	"github.com/felipe-ssantos/prodigyfix/internal/docstore/httpstore"
	"github.com/felipe-ssantos/prodigyfix/internal/kv/boltkv"
)

var debug bool

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tutorialctl",
		Short: "Manage the tutorial collection and local favorites",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newListCmd(),
		newGetCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newSearchCmd(),
		newFavoritesCmd(),
		newPrefetchCmd(),
	)
	return rootCmd
}

// withStore loads config, connects the store, waits for the first
// snapshot, and runs fn.
func withStore(fn func(ctx context.Context, cfg config.Config, st *prodigyfix.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ds := httpstore.New(cfg.DocServiceURL,
		httpstore.WithPollInterval(cfg.SubscribePollEvery),
		httpstore.WithDebugLogging(debug),
	)
	auth := prodigyfix.AuthProviderFunc(func() bool {
		return os.Getenv("PF_ADMIN_TOKEN") != ""
	})
	st, err := prodigyfix.New(ds, auth,
		prodigyfix.WithCollections(cfg.TutorialsCollection, cfg.CategoriesCollection),
	)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	select {
	case <-st.Ready():
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for first snapshot: %w", st.Err())
	}
	return fn(ctx, cfg, st)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newListCmd() *cobra.Command {
	var categoryID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tutorials, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg config.Config, st *prodigyfix.Store) error {
				if categoryID != "" {
					return printJSON(st.GetByCategory(categoryID))
				}
				return printJSON(st.Snapshot())
			})
		},
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "filter by category id")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one tutorial with its neighbors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg config.Config, st *prodigyfix.Store) error {
				t, ok := st.GetByID(args[0])
				if !ok {
					return fmt.Errorf("tutorial %s not found", args[0])
				}
				adj := st.GetAdjacent(args[0])
				return printJSON(map[string]any{
					"tutorial": t,
					"previous": adj.Previous,
					"next":     adj.Next,
				})
			})
		},
	}
}

func newCreateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tutorial from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var req prodigyfix.CreateTutorialRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return err
			}
			return withStore(func(ctx context.Context, cfg config.Config, st *prodigyfix.Store) error {
				id, err := st.Create(ctx, req)
				if err != nil {
					return err
				}
				fmt.Println(id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the tutorial fields")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply a partial update from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var req prodigyfix.UpdateTutorialRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return err
			}
			return withStore(func(ctx context.Context, cfg config.Config, st *prodigyfix.Store) error {
				return st.Update(ctx, args[0], req)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the fields to change")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tutorial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg config.Config, st *prodigyfix.Store) error {
				return st.Delete(ctx, args[0])
			})
		},
	}
}

func newSearchCmd() *cobra.Command {
	var category, difficulty, timeRange string
	var tags []string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the tutorial collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return withStore(func(ctx context.Context, cfg config.Config, st *prodigyfix.Store) error {
				filters := prodigyfix.Filters{
					Category:  category,
					Tags:      tags,
					TimeRange: timeRange,
				}
				if difficulty != "" {
					filters.Difficulty = prodigyfix.NormalizeDifficulty(difficulty)
				}
				return printJSON(prodigyfix.Search(st.Snapshot(), query, filters))
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category id")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "difficulty label")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag substring (repeatable)")
	cmd.Flags().StringVar(&timeRange, "since", "", "time range: week, month, or year")
	return cmd
}

func newPrefetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch <image-id>...",
		Short: "Resolve and cache image URLs ahead of rendering",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			blobs, err := gcs.New(ctx, cfg.ImageBucket, cfg.ImageCacheTTL)
			if err != nil {
				return err
			}
			defer func() { _ = blobs.Close() }()

			r := imageurl.New(blobs,
				imageurl.WithCache(imageurl.NewCache(cfg.ImageCacheTTL)),
				imageurl.WithMaxAttempts(cfg.ImageMaxAttempts),
				imageurl.WithBackoffStep(cfg.ImageBackoffStep),
			)
			defer func() { _ = r.Close() }()

			r.Prefetch(ctx, args)
			if err := r.AwaitPrefetch(ctx, args...); err != nil {
				return err
			}

			// Report per identifier from the warmed cache.
			resolved := make(map[string]string, len(args))
			for _, id := range args {
				url, err := r.Resolve(ctx, id)
				if err != nil {
					log.Warn().Err(err).Str("identifier", id).Msg("not resolved")
					continue
				}
				resolved[id] = url
			}
			return printJSON(resolved)
		},
	}
}

func newFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage the local favorites set",
	}

	openFavorites := func() (*prodigyfix.FavoritesStore, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		store, err := boltkv.Open(cfg.FavoritesDBPath)
		if err != nil {
			return nil, nil, err
		}
		fav, err := prodigyfix.NewFavorites(store, cfg.FavoritesKey)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return fav, func() { _ = store.Close() }, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id>",
			Short: "Favorite a tutorial",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fav, closeFn, err := openFavorites()
				if err != nil {
					return err
				}
				defer closeFn()
				return fav.Add(args[0])
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Unfavorite a tutorial",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fav, closeFn, err := openFavorites()
				if err != nil {
					return err
				}
				defer closeFn()
				return fav.Remove(args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List favorited tutorial ids",
			RunE: func(cmd *cobra.Command, args []string) error {
				fav, closeFn, err := openFavorites()
				if err != nil {
					return err
				}
				defer closeFn()
				return printJSON(fav.IDs())
			},
		},
	)
	return cmd
}
