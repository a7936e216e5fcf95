// Command posealign drives the motion similarity engine from the shell:
// create a session from two videos, run the analysis, fetch results.
//
// Landmark extraction here uses the deterministic stub; a production
// deployment wires a real detector by implementing session.Extractor.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/motionkit/posealign/config"
	"github.com/motionkit/posealign/session"
)

var (
	version    = "dev"
	configPath string
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "posealign",
		Short: "Motion similarity analysis over pose landmark sequences",
		Long: `Posealign compares two videos of a physical motion by extracting
per-frame body landmarks, aligning the two time series with Dynamic
Time Warping, and reporting a similarity percentage. Sessions and
their artifacts persist under the configured data directory.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "posealign.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("posealign %s\n", version)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "create <reference-video> <comparison-video>",
		Short: "Create a session from two videos",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ref, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer ref.Close()
			cmp, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer cmp.Close()

			sess, err := store.Create(args[0], args[1], ref, cmp)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(sess)
			}
			fmt.Println(sess.ID)
			return nil
		},
	})

	analyzeCmd := &cobra.Command{
		Use:   "analyze <session-id>",
		Short: "Extract landmarks (stub) and run the alignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			settings := cfg.Extraction
			ctx := context.Background()

			sess, err := store.Get(args[0])
			if err != nil {
				return err
			}
			if !sess.SequencesAttached {
				if err := store.ExtractAndAttach(ctx, sess.ID, &session.StubExtractor{}, settings); err != nil {
					return err
				}
			}

			doc, err := store.Analyze(ctx, sess.ID)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(doc)
			}
			fmt.Printf("distance=%.4f similarity=%.1f%% degraded_steps=%d\n",
				doc.Metrics.Distance, doc.Metrics.SimilarityPercentage, doc.Metrics.DegradedSteps)
			return nil
		},
	}
	rootCmd.AddCommand(analyzeCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "results <session-id>",
		Short: "Fetch the latest result for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			doc, err := store.LatestResult(args[0])
			if err != nil {
				return err
			}
			return printJSON(doc)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openStore() (*session.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	opts := cfg.StoreOptions()
	opts.Logger = logrus.New()
	opts.Logger.SetLevel(logrus.WarnLevel)
	return session.Open(opts)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
