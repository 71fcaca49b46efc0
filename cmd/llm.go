package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sdh-lab/interview-pipeline/agent"
	"github.com/sdh-lab/interview-pipeline/config"
	"github.com/sdh-lab/interview-pipeline/evaluation"
)

// unavailableLLM keeps the interview endpoints constructible without
// credentials; every call surfaces the original construction error.
type unavailableLLM struct{ err error }

func (u unavailableLLM) Chat(ctx context.Context, system, user string) (string, error) {
	return "", u.err
}

// buildLLM wires the chat client and judge from config. Missing credentials
// degrade instead of aborting: the judge stays nil with an explanatory note
// and the LLM returns the error per call, so affect-only scoring keeps
// working.
func buildLLM(cfg *config.Root, scoring config.Scoring) (agent.LLM, evaluation.TranscriptJudge, string) {
	client, err := agent.NewClient(agent.Options{
		BaseURL: cfg.Judge.BaseURL,
		APIKey:  cfg.Judge.APIKey,
		Model:   cfg.Judge.Model,
	})
	if err != nil {
		logrus.WithError(err).Warn("llm judge unavailable")
		return unavailableLLM{err: err}, nil, fmt.Sprintf("%v (skip agent scoring)", err)
	}
	return client, agent.NewJudge(client, scoring.Agent.Knowledge, scoring.Agent.Attitude), ""
}
