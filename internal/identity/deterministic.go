package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys are prefixed by entity type so identifiers never collide across kinds.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ArtifactUUID identifies the artifact of the given kind for a course. Each
// kind is produced at most once per course so the pair is a stable key.
func ArtifactUUID(courseID, kind string) uuid.UUID {
	return UUID("courseflow:artifact:" + strings.TrimSpace(courseID) + ":" + strings.ToUpper(strings.TrimSpace(kind)))
}

// LearningTreeUUID identifies a learning tree by course, learner and learner
// context fingerprint.
func LearningTreeUUID(courseID, learnerID, fingerprint string) uuid.UUID {
	return UUID("courseflow:plt:" + strings.TrimSpace(courseID) + ":" + strings.TrimSpace(learnerID) + ":" + strings.TrimSpace(fingerprint))
}

// GraphUUID identifies the persisted knowledge graph of a course.
func GraphUUID(courseID string) uuid.UUID {
	return UUID("courseflow:graph:" + strings.TrimSpace(courseID))
}
