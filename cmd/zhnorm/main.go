package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"zhnorm/internal/pkg/zhnorm/config"
	"zhnorm/internal/pkg/zhnorm/normalizers"
	"zhnorm/internal/pkg/zhnorm/pipeline"
	"zhnorm/internal/pkg/zhnorm/pretokenizers"
)

func main() {
	fmt.Fprintf(os.Stderr, "zhnorm %s\n", Version)

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadAndParse(os.Args[1:], os.Stdin)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("Failed to parse configuration")
	}

	if err := setupLogging(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup logging")
	}

	log.Debug().
		Str("normalizer", cfg.Normalizer).
		Str("preset", cfg.Preset).
		Str("format", cfg.Format).
		Bool("lines", cfg.Lines).
		Int("workers", cfg.Workers).
		Msg("Configuration loaded")

	norm, err := cfg.BuildNormalizer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build normalizer")
	}
	log.Debug().Str("kind", norm.Kind()).Msg("Normalizer built")

	if cfg.Dump != "" {
		if err := dump(os.Stdout, norm, cfg.Dump); err != nil {
			log.Fatal().Err(err).Msg("Failed to dump normalizer definition")
		}
		return
	}

	p, err := pipeline.New(norm, pipeline.WithWorkers(cfg.Workers), pipeline.WithLogger(log.Logger))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create pipeline")
	}

	texts := []string{cfg.Text}
	if cfg.Lines {
		texts = strings.Split(strings.TrimSuffix(cfg.Text, "\n"), "\n")
	}

	log.Debug().Int("texts", len(texts)).Msg("Normalizing...")
	startTime := time.Now()

	if cfg.PreTokenize {
		meta := pretokenizers.DefaultMetaspace()
		for _, text := range texts {
			result, splits, err := p.PreTokenize(text, meta)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to pre-tokenize")
			}
			if err := writeSplits(os.Stdout, cfg.Format, result, splits); err != nil {
				log.Fatal().Err(err).Msg("Failed to write output")
			}
		}
	} else {
		results, err := p.NormalizeBatch(context.Background(), texts)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to normalize")
		}
		for _, result := range results {
			if err := writeResult(os.Stdout, cfg.Format, cfg.Alignments, result); err != nil {
				log.Fatal().Err(err).Msg("Failed to write output")
			}
		}
	}

	log.Debug().Dur("elapsed", time.Since(startTime)).Msg("Done")
}

func setupLogging(cfg *config.Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
	}

	return nil
}

func dump(w io.Writer, n normalizers.Normalizer, format string) error {
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = normalizers.MarshalYAML(n)
	} else {
		data, err = json.MarshalIndent(n, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(string(data), "\n"))
	return err
}

func writeResult(w io.Writer, format string, withAlignments bool, r *pipeline.Result) error {
	if format == "json" {
		out := struct {
			Normalized string `json:"normalized"`
			Alignments any    `json:"alignments,omitempty"`
		}{Normalized: r.Normalized}
		if withAlignments {
			out.Alignments = r.Alignments
		}
		return json.NewEncoder(w).Encode(out)
	}

	if _, err := fmt.Fprintln(w, r.Normalized); err != nil {
		return err
	}
	if !withAlignments {
		return nil
	}
	for i, c := range []rune(r.Normalized) {
		a := r.Alignments[i]
		if _, err := fmt.Fprintf(w, "  %q\t[%d, %d)\t%q\n", c, a.Start, a.End, r.Original[a.Start:a.End]); err != nil {
			return err
		}
	}
	return nil
}

func writeSplits(w io.Writer, format string, r *pipeline.Result, splits []pipeline.Split) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(struct {
			Normalized string           `json:"normalized"`
			Splits     []pipeline.Split `json:"splits"`
		}{Normalized: r.Normalized, Splits: splits})
	}
	for _, s := range splits {
		if _, err := fmt.Fprintf(w, "%q\t[%d, %d)\t%q\n", s.Text, s.Original.Start, s.Original.End, r.Original[s.Original.Start:s.Original.End]); err != nil {
			return err
		}
	}
	return nil
}
