package domain

import "time"

// Stage names a pipeline step.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageNormalize Stage = "normalize"
	StageScore     Stage = "score"
	StagePresent   Stage = "present"
)

// Stages lists the pipeline steps in execution order.
var Stages = []Stage{StageFetch, StageNormalize, StageScore, StagePresent}

// Artifact identifies a persisted checkpoint.
type Artifact string

const (
	ArtifactRaw       Artifact = "raw"
	ArtifactClean     Artifact = "clean"
	ArtifactSentiment Artifact = "sentiment"
)

// RunStatus enumerates pipeline outcomes.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is persisted to the history store for each pipeline execution.
type RunRecord struct {
	ID          string
	Keyword     string
	Count       int
	Stages      []Stage
	Strategy    string
	LabelCounts map[Label]int
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}
