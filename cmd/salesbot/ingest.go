package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solarsmart/salesbot/internal/config"
	"github.com/solarsmart/salesbot/internal/providers/rag"
	"github.com/solarsmart/salesbot/pkg/log"
)

var ingestCmd = &cobra.Command{
	Use:           "ingest <path>",
	Short:         "Ingest documents into the knowledge base",
	Long:          `Chunks and embeds the given text or markdown file (or every such file in a directory) into the knowledge base used to ground answers.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		appCfg := config.NewAppConfig(ctx)
		if err := initEnv(ctx, appCfg.GetRuntimePath()); err != nil {
			logger.Fatal().Err(err).Msg("failed to init env")
		}
		ragCfg := config.NewRetrieverConfig(ctx)

		if err := os.MkdirAll(appCfg.GetRuntimePath(), 0o755); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}

		embedder := rag.NewHTTPEmbedder(ragCfg)
		store, err := rag.NewStore(appCfg.GetVectorStorePath(), ragCfg, embedder)
		if err != nil {
			return fmt.Errorf("failed to open vector store: %w", err)
		}

		files, err := collectDocuments(args[0])
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no .txt or .md files found at %s", args[0])
		}

		total := 0
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			sourceID := filepath.Base(file)
			chunks, err := store.IngestText(ctx, sourceID, string(data))
			if err != nil {
				return fmt.Errorf("failed to ingest %s: %w", file, err)
			}

			logger.Info().Str("source", sourceID).Int("chunks", chunks).Msg("document ingested")
			total += chunks
		}

		logger.Info().Int("files", len(files)).Int("chunks", total).Msg("ingestion complete")
		return nil
	},
}

func collectDocuments(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".txt", ".md":
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
