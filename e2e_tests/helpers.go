//go:build e2e
// +build e2e

package e2e

import (
	"github.com/echomap/echomap/internal/model"
)

// souvenirRequest builds a complete create payload around the enrichment
// results produced earlier in the flow.
func souvenirRequest(transcript, audioURL, imageURL string) model.CreateSouvenirRequest {
	story := "written by the smoke test"
	return model.CreateSouvenirRequest{
		Title:      "Smoke test souvenir",
		Story:      &story,
		AudioURL:   audioURL,
		ImageURL:   imageURL,
		Transcript: transcript,
		Latitude:   48.8584,
		Longitude:  2.2945,
	}
}
