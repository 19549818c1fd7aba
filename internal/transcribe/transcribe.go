// Package transcribe wraps the third-party speech-to-text API. The contract
// is best-effort: a failed transcription never blocks souvenir creation, it
// degrades to one of the fixed fallback transcripts.
package transcribe

import (
	"context"
	"hash/fnv"
)

// Transcriber converts an uploaded audio URL into plain text. ok is false
// when the returned text is a fallback rather than a real transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (text string, ok bool)
}

// Fallbacks are the canned transcripts substituted when the speech-to-text
// call fails. Order matters: the choice is derived from the audio URL so the
// same upload always degrades to the same text.
var Fallbacks = []string{
	"A memory was recorded here, but the words drifted away with the wind.",
	"This place holds a story that couldn't be written down.",
	"Some moments speak for themselves.",
}

// Fallback returns the deterministic substitute transcript for audioURL.
func Fallback(audioURL string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(audioURL))
	return Fallbacks[h.Sum32()%uint32(len(Fallbacks))]
}

// IsFallback reports whether text is one of the canned transcripts.
func IsFallback(text string) bool {
	for _, f := range Fallbacks {
		if text == f {
			return true
		}
	}
	return false
}
