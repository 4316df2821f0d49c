package update

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeID derives the stable identity of a record. The link alone is enough
// for feeds that publish one; feeds without per-entry links fall back to
// source+title so re-fetches still converge on the same id.
func ComputeID(link, source, title string) string {
	content := link
	if content == "" {
		content = fmt.Sprintf("%s|%s", source, title)
	}

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ComputeSignature hashes the visible fields of a record. Classification
// drift (category, provider, tags) deliberately stays out of the signature so
// a re-run of the classifier does not bump updated_at on unchanged content.
func ComputeSignature(title, description, link string, published time.Time) string {
	content := fmt.Sprintf("%s|%s|%s|%s",
		title,
		description,
		link,
		published.UTC().Format(time.RFC3339))

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
