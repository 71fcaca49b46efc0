package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sdh-lab/interview-pipeline/agent"
	"github.com/sdh-lab/interview-pipeline/emotion"
	"github.com/sdh-lab/interview-pipeline/evaluation"
)

// Scoring holds every tunable evaluation constant.
type Scoring struct {
	Emotion     emotion.Weights              `yaml:"emotion"`
	Sufficiency evaluation.SufficiencyParams `yaml:"sufficiency"`
	Agent       struct {
		Knowledge float64 `yaml:"knowledge"`
		Attitude  float64 `yaml:"attitude"`
	} `yaml:"agent"`
	Fusion struct {
		AgentFinal  float64 `yaml:"agent_final"`
		EmotionFace float64 `yaml:"emotion_face"`
	} `yaml:"fusion"`
}

func DefaultScoring() Scoring {
	var s Scoring
	s.Emotion = emotion.DefaultWeights()
	s.Sufficiency = evaluation.DefaultSufficiencyParams()
	s.Agent.Knowledge = agent.DefaultKnowledgeWeight
	s.Agent.Attitude = agent.DefaultAttitudeWeight
	s.Fusion.AgentFinal = evaluation.DefaultAgentFinalWeight
	s.Fusion.EmotionFace = evaluation.DefaultEmotionWeight
	return s
}

// LoadScoring reads the weights file over the defaults, so a partial file
// only overrides what it names. A missing file is not an error.
func LoadScoring(path string) (Scoring, error) {
	s := DefaultScoring()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&s); err != nil {
		return s, fmt.Errorf("scoring decode: %w", err)
	}
	return s, nil
}
