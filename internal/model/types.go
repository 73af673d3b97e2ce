// Package model defines shared data structures.
package model

import "time"

// TrainConfig defines dataset and forest settings for a training run.
type TrainConfig struct {
	ExamplesPerClass int
	Noise            int
	Trees            int
	TestFraction     float64
	SplitSeed        int64
	ForestSeed       int64
	// DataSeed seeds example generation; nil draws a fresh dataset each run.
	DataSeed *int64
}

// StoreConfig selects where the model artifact lives.
type StoreConfig struct {
	Backend   string
	ModelPath string
	DBPath    string
}

// SpeechConfig defines the external commands used to speak a word.
type SpeechConfig struct {
	Enabled bool
	Synth   string
	Play    string
}

// TrainingRun captures a completed training attempt.
type TrainingRun struct {
	ID               string
	StartedAt        time.Time
	EndedAt          time.Time
	Examples         int
	TrainSize        int
	TestSize         int
	Classes          int
	ExamplesPerClass int
	Noise            int
	Trees            int
	Accuracy         float64
	MacroF1          float64
	Report           string
}
