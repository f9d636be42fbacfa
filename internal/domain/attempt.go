package domain

// Stage names one step of a generation attempt.
type Stage string

const (
	StageResolvingTemplate  Stage = "resolving_template"
	StageDescribingImage    Stage = "describing_image"
	StageBuildingPrompt     Stage = "building_prompt"
	StageGeneratingCaptions Stage = "generating_captions"
	StageRendering          Stage = "rendering"
	StageScoring            Stage = "scoring"
)

// FailureKind classifies why an attempt did not produce an accepted result.
type FailureKind int

const (
	// FailureNone means the attempt cleared every gate.
	FailureNone FailureKind = iota
	// FailureNoCaptions means no clean caption pair came out of the caption loop.
	FailureNoCaptions
	// FailureRender means the render collaborator produced no artifact.
	FailureRender
	// FailureBelowThreshold means the caption scored under the humor threshold.
	FailureBelowThreshold
	// FailureCollaborator means a collaborator failed in an unexpected way.
	FailureCollaborator
	// FailureCanceled means the request was canceled mid-attempt.
	FailureCanceled
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNoCaptions:
		return "no_captions"
	case FailureRender:
		return "render_failed"
	case FailureBelowThreshold:
		return "below_threshold"
	case FailureCollaborator:
		return "collaborator_error"
	case FailureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Retryable reports whether the orchestrator should spend another attempt.
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureNoCaptions, FailureRender, FailureBelowThreshold, FailureCollaborator:
		return true
	default:
		return false
	}
}

// AttemptOutcome is the typed result of one attempt. It is never persisted.
type AttemptOutcome struct {
	Number      int
	Template    Template
	Scene       string
	Caption     Caption
	ArtifactURL string
	Score       HumorScore
	Failure     FailureKind
	FailedStage Stage
	Err         error
}

// Accepted reports whether the attempt cleared every gate.
func (o *AttemptOutcome) Accepted() bool {
	return o.Failure == FailureNone
}
