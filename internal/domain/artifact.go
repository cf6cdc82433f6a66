package domain

// ArtifactKind names a document produced when a checkpoint is passed.
type ArtifactKind string

const (
	// ArtifactFACD holds the faculty approved course details (learning objectives).
	ArtifactFACD ArtifactKind = "FACD"
	// ArtifactFCCS holds the faculty confirmed course structure.
	ArtifactFCCS ArtifactKind = "FCCS"
	// ArtifactFFCS holds the faculty finalized course structure and knowledge graph.
	ArtifactFFCS ArtifactKind = "FFCS"
)

// ArtifactKinds returns the artifact kinds in the order they are produced.
func ArtifactKinds() []ArtifactKind {
	return []ArtifactKind{ArtifactFACD, ArtifactFCCS, ArtifactFFCS}
}

// ArtifactForCheckpoint returns the artifact produced when the checkpoint is passed.
func ArtifactForCheckpoint(stage Stage) (ArtifactKind, bool) {
	switch stage {
	case StageAwaitingLOApproval:
		return ArtifactFACD, true
	case StageAwaitingStructureConfirmation:
		return ArtifactFCCS, true
	case StageAwaitingKGFinalization:
		return ArtifactFFCS, true
	default:
		return "", false
	}
}
