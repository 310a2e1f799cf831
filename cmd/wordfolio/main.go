package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wordfolio/wordfolio/internal/profile"
	"github.com/wordfolio/wordfolio/server/ai"
	"github.com/wordfolio/wordfolio/internal/observability"
	"github.com/wordfolio/wordfolio/server/service/interest"
	"github.com/wordfolio/wordfolio/server/service/vocabulary"
	"github.com/wordfolio/wordfolio/store"
	"github.com/wordfolio/wordfolio/store/db"
)

var userID int32

func main() {
	rootCmd := &cobra.Command{
		Use:           "wordfolio",
		Short:         "Personalized vocabulary cards with a reusable content cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().Int32Var(&userID, "user", 0, "acting user ID, 0 for anonymous")

	viper.SetEnvPrefix("wordfolio")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{"mode", "driver", "dsn"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(
		newLookupCommand(),
		newInteractCommand(),
		newTopInterestCommand(),
		newVocabCommand(),
		newProfileCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime wires profile, storage, and services for one command invocation.
type runtime struct {
	profile   *profile.Profile
	store     *store.Store
	interests *interest.Service
	vocab     *vocabulary.Service
	logger    *slog.Logger
}

func newRuntime(ctx context.Context) (*runtime, error) {
	p := &profile.Profile{}
	p.FromEnv()
	p.Mode = viper.GetString("mode")
	p.Driver = viper.GetString("driver")
	if dsn := viper.GetString("dsn"); dsn != "" {
		p.DSN = dsn
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler)

	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	st := store.New(driver, p)
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	var generator ai.Generator
	if p.IsAIEnabled() {
		generator, err = ai.NewProvider(ai.ConfigFromProfile(p))
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	} else {
		generator = disabledGenerator{}
	}

	interests := interest.NewService(st)
	return &runtime{
		profile:   p,
		store:     st,
		interests: interests,
		vocab:     vocabulary.NewService(st, p, generator, interests),
		logger:    logger,
	}, nil
}

func (r *runtime) close() {
	_ = r.store.Close()
}

// requestContext attaches a fresh request scope so service logs carry a
// request ID.
func (r *runtime) requestContext(ctx context.Context, component string) context.Context {
	return observability.WithRequestContext(ctx, observability.NewRequestContext(r.logger, component, userID))
}

// disabledGenerator stands in when no provider is configured; every miss
// takes the fallback-card path.
type disabledGenerator struct{}

func (disabledGenerator) Generate(context.Context, string, ai.PersonalizationContext) (*ai.WordContent, error) {
	return nil, fmt.Errorf("content generation is not configured")
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup WORD",
		Short: "Fetch a personalized card for a word, reusing cached content when possible",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.close()

			result, err := r.vocab.FetchWordContent(r.requestContext(ctx, "lookup"), userID, args[0])
			if err != nil {
				return err
			}

			out := map[string]any{
				"definition":       result.Card.Definition,
				"conversation":     result.Card.Conversation,
				"examples":         result.Card.ExampleList(),
				"target_language":  result.Card.TargetLanguage,
				"cefr_level":       result.Card.TargetCEFR,
				"interest_context": result.Card.InterestContext,
				"tone_style":       result.Card.ToneStyle,
				"card_id":          result.Card.ID,
				"cache_hit":        result.CacheHit,
			}
			if result.Membership != nil {
				out["familiarity"] = result.Membership.Familiarity
			}
			return printJSON(out)
		},
	}
}

func newInteractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "interact LABEL ACTION",
		Short: "Record an interest interaction (click, view_50_percent, view_100_percent, share, explicit_tag)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if userID == 0 {
				return fmt.Errorf("interactions require --user")
			}
			r, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.close()
			ctx = r.requestContext(ctx, "interact")

			// The interest graph row references the profile; make sure one
			// exists before the first interaction.
			if err := ensureUserProfile(ctx, r.store, userID); err != nil {
				return err
			}
			if err := r.interests.RecordInteraction(ctx, userID, args[0], args[1]); err != nil {
				return err
			}

			graph, err := r.interests.Graph(ctx, userID)
			if err != nil {
				return err
			}
			return printJSON(graph)
		},
	}
}

func newTopInterestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "top-interest",
		Short: "Show the user's highest-scoring interest label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.close()
			ctx = r.requestContext(ctx, "top-interest")

			top, err := r.interests.TopInterest(ctx, userID)
			if err != nil {
				return err
			}
			graph, err := r.interests.Graph(ctx, userID)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"top_interest": top, "graph": graph})
		},
	}
}

func newVocabCommand() *cobra.Command {
	vocabCmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage the user's saved vocabulary",
	}

	vocabCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved words with familiarity ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.close()

			entries, err := r.vocab.ListVocabulary(r.requestContext(ctx, "vocab-list"), userID)
			if err != nil {
				return err
			}
			out := make([]map[string]any, 0, len(entries))
			for _, entry := range entries {
				out = append(out, map[string]any{
					"word":        entry.Word.Text,
					"language":    entry.Word.Language,
					"card_id":     entry.Card.ID,
					"cefr_level":  entry.Card.TargetCEFR,
					"familiarity": entry.Membership.Familiarity,
				})
			}
			return printJSON(out)
		},
	})

	vocabCmd.AddCommand(&cobra.Command{
		Use:   "rate CARD_ID FAMILIARITY",
		Short: "Set the familiarity rating (1-5) for a saved card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			familiarity, err := parseID(args[1])
			if err != nil {
				return err
			}
			r, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.close()

			membership, err := r.vocab.SetFamiliarity(r.requestContext(ctx, "vocab-rate"), userID, cardID, familiarity)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"card_id": membership.CardID, "familiarity": membership.Familiarity})
		},
	})

	vocabCmd.AddCommand(&cobra.Command{
		Use:   "remove CARD_ID",
		Short: "Remove a card from the user's vocabulary list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.close()

			return r.vocab.RemoveWord(r.requestContext(ctx, "vocab-remove"), userID, cardID)
		},
	})

	return vocabCmd
}

func newProfileCommand() *cobra.Command {
	var (
		nickname       string
		level          string
		ageGroup       string
		targetLanguage string
		nativeLanguage string
	)
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Set the user's personalization profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if userID == 0 {
				return fmt.Errorf("profiles require --user")
			}
			if level != "" && !store.IsValidCEFRLevel(level) {
				return fmt.Errorf("invalid CEFR level %q, must be one of %v", level, store.CEFRLevels)
			}
			r, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.close()

			userProfile, err := r.store.UpsertUserProfile(ctx, &store.UpsertUserProfile{
				UserID:         userID,
				Nickname:       nickname,
				Level:          level,
				AgeGroup:       ageGroup,
				TargetLanguage: targetLanguage,
				NativeLanguage: nativeLanguage,
			})
			if err != nil {
				return err
			}
			return printJSON(userProfile)
		},
	}
	profileCmd.Flags().StringVar(&nickname, "nickname", "", "display name")
	profileCmd.Flags().StringVar(&level, "level", "", "CEFR level (A1-C2)")
	profileCmd.Flags().StringVar(&ageGroup, "age-group", "", "age group, e.g. adult")
	profileCmd.Flags().StringVar(&targetLanguage, "target-language", "", "language being learned")
	profileCmd.Flags().StringVar(&nativeLanguage, "native-language", "", "language explanations are written in")
	return profileCmd
}

func ensureUserProfile(ctx context.Context, st *store.Store, userID int32) error {
	existing, err := st.GetUserProfile(ctx, &store.FindUserProfile{UserID: &userID})
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = st.UpsertUserProfile(ctx, &store.UpsertUserProfile{UserID: userID})
	return err
}

func parseID(raw string) (int32, error) {
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return int32(value), nil
}
