package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ecr-group/leadqual-cli/internal/compose"
	"github.com/ecr-group/leadqual-cli/internal/model"
	anthropicpkg "github.com/ecr-group/leadqual-cli/pkg/anthropic"
)

var (
	msgFirstName string
	msgLastName  string
	msgPosition  string
	msgCompany   string
	msgTone      string
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Preview an outreach message for a sample lead",
	Long:  "Composes a single outreach message from the configured mode and template without fetching any contacts. Useful for checking a template or tone before a full run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := buildComposeParams()
		if msgTone != "" {
			if !model.ValidTone(msgTone) {
				return eris.Errorf("unknown tone %q (valid: %v)", msgTone, model.Tones())
			}
			params.Tone = model.Tone(msgTone)
		}

		if params.Mode == model.ModeGenerated && cfg.Anthropic.Key == "" {
			return eris.New("anthropic key is required for generated messages (LEADQUAL_ANTHROPIC_KEY)")
		}

		var ai anthropicpkg.Client
		if cfg.Anthropic.Key != "" {
			ai = anthropicpkg.NewClient(cfg.Anthropic.Key)
		}
		composer := compose.NewComposer(ai, cfg.Anthropic.Model)

		lead := model.QualifiedLead{
			FirstName: msgFirstName,
			LastName:  msgLastName,
			Position:  msgPosition,
			Company:   msgCompany,
			Email:     "preview@example.com",
		}

		msg := composer.Compose(cmd.Context(), lead, params)
		if msg.Fallback {
			fmt.Fprintln(os.Stderr, "note: composition fell back to the default message")
		}
		fmt.Println(msg.Text)
		return nil
	},
}

func init() {
	messageCmd.Flags().StringVar(&msgFirstName, "first-name", "Jane", "sample lead first name")
	messageCmd.Flags().StringVar(&msgLastName, "last-name", "Doe", "sample lead last name")
	messageCmd.Flags().StringVar(&msgPosition, "position", "CFO", "sample lead job title")
	messageCmd.Flags().StringVar(&msgCompany, "company", "Acme Corp", "sample lead company")
	messageCmd.Flags().StringVar(&msgTone, "tone", "", "tone override for generated mode")
	rootCmd.AddCommand(messageCmd)
}
