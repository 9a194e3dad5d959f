package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/padroles/internal/markers"
	"github.com/suykerbuyk/padroles/internal/pad"
	"github.com/suykerbuyk/padroles/internal/schema"
)

var (
	scoreRole       string
	scoreTone       string
	scoreEngagement string
)

var scoreCmd = &cobra.Command{
	Use:   "score [text]",
	Short: "Score one message and print its PAD value",
	Long: `Scores a single message with the configured engine. The text is taken from
the arguments, or from stdin when none are given.

Example:
  padroles score --role assistant "This doesn't work!! Sorry about that."`,
	RunE: runScore,
}

var schemaCmd = &cobra.Command{
	Use:       "schema [record|classification]",
	Short:     "Print the JSON Schema of the record format",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(schema.RecordDoc), string(schema.ClassificationDoc)},
	RunE:      runSchema,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreRole, "role", "user", "Message role (user, assistant, ...)")
	scoreCmd.Flags().StringVar(&scoreTone, "tone", "", "emotionalTone category of the conversation")
	scoreCmd.Flags().StringVar(&scoreEngagement, "engagement", "", "engagementStyle category of the conversation")
}

type scoreOutput struct {
	Pleasure           float64  `json:"pleasure"`
	Arousal            float64  `json:"arousal"`
	Dominance          float64  `json:"dominance"`
	EmotionalIntensity float64  `json:"emotionalIntensity"`
	Markers            []string `json:"markers"`
	Formula            string   `json:"formula"`
	MarkerVersion      string   `json:"markerVersion"`
}

func runScore(cmd *cobra.Command, args []string) error {
	_, cc, err := loadCorpus()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}

	v := cc.Engine.Score(scoreRole, text, pad.Context{
		Tone:       strings.ToLower(strings.TrimSpace(scoreTone)),
		Engagement: strings.ToLower(strings.TrimSpace(scoreEngagement)),
	})
	return writeJSON(cmd.OutOrStdout(), scoreOutput{
		Pleasure:           v.Pleasure,
		Arousal:            v.Arousal,
		Dominance:          v.Dominance,
		EmotionalIntensity: v.EmotionalIntensity,
		Markers:            v.Markers,
		Formula:            cc.Engine.Formula().String(),
		MarkerVersion:      markers.Version,
	})
}

func runSchema(cmd *cobra.Command, args []string) error {
	doc := schema.RecordDoc
	if len(args) == 1 {
		doc = schema.Document(args[0])
	}
	b, err := schema.Generate(doc)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}
