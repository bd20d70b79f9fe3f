package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/salihRogo/movie-recommender/internal/model"
	"github.com/spf13/cobra"
)

var modelsDir string

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect locally stored model artifacts",
}

var modelCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load model artifacts and report their shape",
	Long: `Load the model artifacts from disk the same way the server does
and print the item count. Exits non-zero if the artifacts are missing
or inconsistent, so it can be used as a pre-deploy check.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := model.NewStore()
		if err := store.Load(modelsDir); err != nil {
			return fmt.Errorf("model artifacts failed to load: %w", err)
		}

		snap := store.Snapshot()
		if output == "json" {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"models_dir": modelsDir,
				"item_count": snap.ItemCount(),
			})
		}

		fmt.Printf("Model artifacts in %s loaded successfully\n", modelsDir)
		fmt.Printf("  Items: %d\n", snap.ItemCount())
		return nil
	},
}

func init() {
	modelCmd.PersistentFlags().StringVar(&modelsDir, "models-dir", "models", "Directory holding the model artifact files")
	modelCmd.AddCommand(modelCheckCmd)
}
