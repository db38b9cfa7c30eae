package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kindlingapp/kindling/internal/config"
	"github.com/kindlingapp/kindling/internal/engine"
	"github.com/kindlingapp/kindling/internal/question"
	"github.com/kindlingapp/kindling/internal/resume"
)

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate conversation starters",
	Long: `Generate a ranked set of conversation-starter questions.

Profiles come from saved handles or inline JSON files. Omit --other to
open a room cold with only your own profile.

Examples:
  kindling generate --self me --other ben --event "Spring Mixer" --noise 2
  kindling generate --self-file me.json --category career_fair --minutes 2
  kindling generate --self me --mode followup_nudge --notes "we talked robotics"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := map[string]any{}

		selfHandle, _ := cmd.Flags().GetString("self")
		otherHandle, _ := cmd.Flags().GetString("other")
		selfFile, _ := cmd.Flags().GetString("self-file")
		otherFile, _ := cmd.Flags().GetString("other-file")

		if selfHandle == "" && selfFile == "" {
			return fmt.Errorf("one of --self or --self-file is required")
		}
		if selfHandle != "" {
			req["self_handle"] = selfHandle
		}
		if otherHandle != "" {
			req["other_handle"] = otherHandle
		}
		if selfFile != "" {
			rec, err := readProfileFile(selfFile)
			if err != nil {
				return err
			}
			req["self"] = rec
		}
		if otherFile != "" {
			rec, err := readProfileFile(otherFile)
			if err != nil {
				return err
			}
			req["other"] = rec
		}

		ctxRec := map[string]any{}
		if v, _ := cmd.Flags().GetString("event"); v != "" {
			ctxRec["event_label"] = v
		}
		if v, _ := cmd.Flags().GetString("category"); v != "" {
			ctxRec["event_category"] = v
		}
		if cmd.Flags().Changed("noise") {
			ctxRec["noise_level"], _ = cmd.Flags().GetInt("noise")
		}
		if cmd.Flags().Changed("minutes") {
			ctxRec["time_budget_minutes"], _ = cmd.Flags().GetInt("minutes")
		}
		if v, _ := cmd.Flags().GetString("stage"); v != "" {
			ctxRec["conversation_stage"] = v
		}
		if v, _ := cmd.Flags().GetString("city"); v != "" {
			ctxRec["city"] = v
		}
		if len(ctxRec) > 0 {
			req["context"] = ctxRec
		}

		prefs := map[string]any{}
		if noPlayful, _ := cmd.Flags().GetBool("no-playful"); noPlayful {
			prefs["allow_playful"] = false
		}
		if favorites, _ := cmd.Flags().GetBool("favorites"); favorites {
			prefs["include_favorites"] = true
		}
		if v, _ := cmd.Flags().GetString("focus"); v != "" {
			prefs["temporal_focus"] = v
		}
		if v, _ := cmd.Flags().GetString("vulnerability"); v != "" {
			prefs["vulnerability_level"] = v
		}
		if len(prefs) > 0 {
			req["preferences"] = prefs
		}

		if v, _ := cmd.Flags().GetString("mode"); v != "" {
			req["mode"] = v
		}
		if v, _ := cmd.Flags().GetString("notes"); v != "" {
			req["notes"] = v
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/questions", req)
		if err != nil {
			return err
		}

		var set question.Set
		if err := decodeJSON(resp, &set); err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(set)
		}

		printQuestionSet(set)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("self", "", "handle of your saved profile")
	generateCmd.Flags().String("other", "", "handle of the other person's saved profile")
	generateCmd.Flags().String("self-file", "", "JSON file with your profile")
	generateCmd.Flags().String("other-file", "", "JSON file with the other person's profile")
	generateCmd.Flags().String("event", "", "event label, e.g. \"Spring Mixer\"")
	generateCmd.Flags().String("category", "", "event category: mixer, career_fair, conference, class, social")
	generateCmd.Flags().Int("noise", 0, "noise level 0-3")
	generateCmd.Flags().Int("minutes", 0, "time budget in minutes")
	generateCmd.Flags().String("stage", "", "conversation stage: icebreaker, warm, deep")
	generateCmd.Flags().String("city", "", "city the event is in")
	generateCmd.Flags().String("mode", "", "generation mode (default generate_openers)")
	generateCmd.Flags().String("notes", "", "free-text context for the generator")
	generateCmd.Flags().Bool("no-playful", false, "disallow playful questions")
	generateCmd.Flags().Bool("favorites", false, "allow favorite-things questions")
	generateCmd.Flags().String("focus", "", "temporal focus: present, near_future")
	generateCmd.Flags().String("vulnerability", "", "vulnerability level: low, med, high")
	generateCmd.Flags().Bool("json", false, "print the raw JSON result")
}

func readProfileFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing profile file %s: %w", path, err)
	}
	return rec, nil
}

func printQuestionSet(set question.Set) {
	if len(set.Summary.Commonalities) > 0 {
		fmt.Printf("%s %s\n", colorize(colorBold, "In common:"), strings.Join(set.Summary.Commonalities, ", "))
	}
	if len(set.Summary.Complements) > 0 {
		fmt.Printf("%s %s\n", colorize(colorBold, "Can help:"), strings.Join(set.Summary.Complements, "; "))
	}
	if set.Summary.ContextNotes != "" {
		fmt.Printf("%s %s\n", colorize(colorBold, "Context:"), set.Summary.ContextNotes)
	}

	top := make(map[int]bool, len(set.TopPicks))
	for _, idx := range set.TopPicks {
		top[idx] = true
	}

	for i, q := range set.Questions {
		marker := " "
		if top[i] {
			marker = colorize(colorGreen, "★")
		}
		fmt.Printf("\n%s %s %s\n", marker,
			colorize(colorCyan, fmt.Sprintf("[%s/%s]", q.Level, q.Style)),
			colorize(colorBold, q.Text))
		if q.Rationale != "" {
			fmt.Printf("    %s\n", q.Rationale)
		}
		if q.FollowUp != "" {
			fmt.Printf("    follow-up: %s\n", q.FollowUp)
		}
	}
}

// --- overlap ---

var overlapCmd = &cobra.Command{
	Use:   "overlap",
	Short: "Show commonalities between two profile files",
	Long:  "Run overlap detection alone, without calling the generation backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		selfFile, _ := cmd.Flags().GetString("self-file")
		otherFile, _ := cmd.Flags().GetString("other-file")
		if selfFile == "" {
			return fmt.Errorf("--self-file is required")
		}

		req := map[string]any{}
		rec, err := readProfileFile(selfFile)
		if err != nil {
			return err
		}
		req["self"] = rec
		if otherFile != "" {
			rec, err := readProfileFile(otherFile)
			if err != nil {
				return err
			}
			req["other"] = rec
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/v1/overlap", req)
		if err != nil {
			return err
		}

		var summary question.Summary
		if err := decodeJSON(resp, &summary); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	overlapCmd.Flags().String("self-file", "", "JSON file with your profile")
	overlapCmd.Flags().String("other-file", "", "JSON file with the other person's profile")
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved participant profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add <handle>",
	Short: "Save a profile from a JSON file or flags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handle := args[0]

		body := map[string]any{}
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			rec, err := readProfileFile(file)
			if err != nil {
				return err
			}
			body = rec
		}
		if v, _ := cmd.Flags().GetString("name"); v != "" {
			body["name"] = v
		}
		if v, _ := cmd.Flags().GetString("role"); v != "" {
			body["role"] = v
		}
		if v, _ := cmd.Flags().GetString("company"); v != "" {
			body["company"] = v
		}
		if v, _ := cmd.Flags().GetString("school"); v != "" {
			body["school"] = v
		}
		if v, _ := cmd.Flags().GetString("interests"); v != "" {
			body["interests"] = splitList(v)
		}
		if v, _ := cmd.Flags().GetString("goals"); v != "" {
			body["goals_next_period"] = splitList(v)
		}
		if v, _ := cmd.Flags().GetString("offers"); v != "" {
			body["help_offers"] = splitList(v)
		}
		if v, _ := cmd.Flags().GetString("win"); v != "" {
			body["recent_win"] = v
		}
		if len(body) == 0 {
			return fmt.Errorf("nothing to save; pass --file or field flags")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.put(cmd.Context(), "/v1/profiles/"+handle, body)
		if err != nil {
			return err
		}

		var saved map[string]any
		if err := decodeJSON(resp, &saved); err != nil {
			return err
		}

		printSuccess("Saved profile %s", handle)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <handle>",
	Short: "Show a saved profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/v1/profiles/"+args[0])
		if err != nil {
			return err
		}

		var rec any
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/v1/profiles")
		if err != nil {
			return err
		}

		var body struct {
			Profiles []struct {
				Handle string `json:"handle"`
				Name   string `json:"name"`
				Role   string `json:"role"`
			} `json:"profiles"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		if len(body.Profiles) == 0 {
			fmt.Println("No saved profiles.")
			return nil
		}
		for _, p := range body.Profiles {
			line := colorize(colorCyan, p.Handle)
			if p.Name != "" {
				line += "  " + p.Name
			}
			if p.Role != "" {
				line += "  (" + p.Role + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <handle>",
	Short: "Delete a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/v1/profiles/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]any
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted profile %s", args[0])
		return nil
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <handle>",
	Short: "Import a profile from a resume PDF or a bio page URL",
	Long: `Import a profile from source material. The text is extracted locally
and structured by the generation backend; fields never present in the
source stay empty. The raw extract is kept as profile notes.

Examples:
  kindling profile import ben --pdf ./ben-resume.pdf
  kindling profile import amira --url https://example.com/about`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handle := args[0]
		pdfPath, _ := cmd.Flags().GetString("pdf")
		bioURL, _ := cmd.Flags().GetString("url")

		if (pdfPath == "") == (bioURL == "") {
			return fmt.Errorf("exactly one of --pdf or --url is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		var source string
		switch {
		case pdfPath != "":
			printStep("Extracting text from %s...", pdfPath)
			source, err = resume.ExtractPDF(pdfPath)
		default:
			printStep("Fetching %s...", bioURL)
			source, err = resume.FetchBio(ctx, &http.Client{Timeout: 15 * time.Second}, bioURL)
		}
		if err != nil {
			return err
		}

		eng, err := engine.Detect(engine.DetectConfig{
			Backend:          cfg.Generation.Backend,
			OllamaBaseURL:    cfg.Ollama.BaseURL,
			OpenRouterAPIKey: cfg.Proxy.OpenRouterAPIKey,
		})
		if err != nil {
			return err
		}
		if err := engine.EnsureReady(ctx, eng, cfg.Model(), os.Stderr); err != nil {
			return err
		}

		printStep("Structuring profile fields...")
		fields, err := resume.Structure(ctx, eng, cfg.Model(), source)
		if err != nil {
			return err
		}

		body := map[string]any{
			"name":              fields.Name,
			"role":              fields.Role,
			"company":           fields.Company,
			"school":            fields.School,
			"interests":         fields.Interests,
			"goals_next_period": fields.Goals,
			"help_offers":       fields.HelpOffers,
			"recent_win":        fields.RecentWin,
			"notes":             source,
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.put(ctx, "/v1/profiles/"+handle, body)
		if err != nil {
			return err
		}

		var saved map[string]any
		if err := decodeJSON(resp, &saved); err != nil {
			return err
		}

		printSuccess("Imported profile %s (%s)", handle, fields.Name)
		return nil
	},
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	profileAddCmd.Flags().String("file", "", "JSON file with profile fields")
	profileAddCmd.Flags().String("name", "", "display name")
	profileAddCmd.Flags().String("role", "", "role or title")
	profileAddCmd.Flags().String("company", "", "company")
	profileAddCmd.Flags().String("school", "", "school")
	profileAddCmd.Flags().String("interests", "", "comma-separated interests")
	profileAddCmd.Flags().String("goals", "", "comma-separated goals for the next period")
	profileAddCmd.Flags().String("offers", "", "comma-separated things they can help with")
	profileAddCmd.Flags().String("win", "", "a recent win")

	profileImportCmd.Flags().String("pdf", "", "path to a resume PDF")
	profileImportCmd.Flags().String("url", "", "URL of a bio page")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileImportCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
