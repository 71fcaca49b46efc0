package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sdh-lab/interview-pipeline/config"
	"github.com/sdh-lab/interview-pipeline/evaluation"
)

var evalFlags struct {
	sessionID   string
	role        string
	baseDir     string
	transcript  string
	emotionLog  string
	wKnowledge  float64
	wAttitude   float64
	wAgentFinal float64
	wEmotion    float64
	jsonOnly    bool
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	scoreStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	noteStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("243"))
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a recorded session from its transcript and emotion log",
	Long: `Evaluate resolves the session's transcript and emotion log, asks the
LLM judge for knowledge/attitude scores, applies the data-sufficiency
adjustment and prints the fused report as JSON.`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evalFlags.sessionID, "session-id", "", "session identifier (required)")
	f.StringVar(&evalFlags.role, "role", "ai_engineer", "target role given to the judge")
	f.StringVar(&evalFlags.baseDir, "base-dir", "", "directory holding transcripts and emotion logs (default: configured exports dir)")
	f.StringVar(&evalFlags.transcript, "transcript", "", "explicit transcript path, skips resolution")
	f.StringVar(&evalFlags.emotionLog, "emotion-log", "", "explicit emotion log path, skips resolution")
	f.Float64Var(&evalFlags.wKnowledge, "w-knowledge", 0, "knowledge weight (defaults to the configured value)")
	f.Float64Var(&evalFlags.wAttitude, "w-attitude", 0, "attitude weight (defaults to the configured value)")
	f.Float64Var(&evalFlags.wAgentFinal, "w-agent-final", 0, "agent share of the total (defaults to the configured value)")
	f.Float64Var(&evalFlags.wEmotion, "w-emotion", 0, "emotion share of the total (defaults to the configured value)")
	f.BoolVar(&evalFlags.jsonOnly, "json", false, "print the raw report JSON only")
	_ = evaluateCmd.MarkFlagRequired("session-id")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogging(cfg.Pipeline.LogLvl)

	scoring, err := config.LoadScoring(cfg.Paths.Weights)
	if err != nil {
		return fmt.Errorf("load scoring weights: %w", err)
	}
	_, judge, judgeNote := buildLLM(cfg, scoring)

	svc := evaluation.NewService(evaluation.Config{
		BaseDir:     cfg.Paths.Exports,
		OutputsDir:  cfg.Paths.Outputs,
		Judge:       judge,
		JudgeNote:   judgeNote,
		Weights:     scoring.Emotion,
		Sufficiency: scoring.Sufficiency,
	})

	report, err := svc.Evaluate(cmd.Context(), evaluation.Request{
		SessionID:      evalFlags.sessionID,
		Role:           evalFlags.role,
		BaseDir:        evalFlags.baseDir,
		TranscriptPath: evalFlags.transcript,
		EmotionPath:    evalFlags.emotionLog,
		WKnowledge:     weightFlag(cmd, "w-knowledge", evalFlags.wKnowledge, scoring.Agent.Knowledge),
		WAttitude:      weightFlag(cmd, "w-attitude", evalFlags.wAttitude, scoring.Agent.Attitude),
		WAgentFinal:    weightFlag(cmd, "w-agent-final", evalFlags.wAgentFinal, scoring.Fusion.AgentFinal),
		WEmotion:       weightFlag(cmd, "w-emotion", evalFlags.wEmotion, scoring.Fusion.EmotionFace),
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !evalFlags.jsonOnly {
		printSummary(cmd, report)
	}
	return nil
}

// weightFlag prefers a flag the caller actually set, zero included, over the
// configured value.
func weightFlag(cmd *cobra.Command, name string, flag, configured float64) *float64 {
	if cmd.Flags().Changed(name) {
		return &flag
	}
	return &configured
}

func printSummary(cmd *cobra.Command, rep *evaluation.Report) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintln(w, labelStyle.Render("Session:"), rep.Inputs.SessionID)
	fmt.Fprintln(w, labelStyle.Render("Emotion events:"), fmt.Sprintf("%d", rep.Emotion.TotalEvents))
	fmt.Fprintln(w, labelStyle.Render("Emotion score:"), scoreStyle.Render(fmt.Sprintf("%.2f", rep.Emotion.Score)))
	if rep.Agent.Scores != nil {
		fmt.Fprintln(w, labelStyle.Render("Knowledge:"), scoreStyle.Render(fmt.Sprintf("%.2f", rep.Agent.Scores.KnowledgeScore)))
		fmt.Fprintln(w, labelStyle.Render("Attitude:"), scoreStyle.Render(fmt.Sprintf("%.2f", rep.Agent.Scores.AttitudeScore)))
	}
	if rep.Agent.Error != nil {
		fmt.Fprintln(w, noteStyle.Render("agent: "+*rep.Agent.Error))
	}
	if rep.Overall.TotalScore != nil {
		fmt.Fprintln(w, labelStyle.Render("Total:"), scoreStyle.Render(fmt.Sprintf("%.2f", *rep.Overall.TotalScore)))
	} else {
		fmt.Fprintln(w, labelStyle.Render("Total:"), noteStyle.Render("unavailable without judge result"))
	}
}
