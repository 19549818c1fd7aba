package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// usernameRx: lowercase letters, digits, underscore, 3-20 chars.
var usernameRx = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// Username validates a candidate username (already lowercased by callers).
func Username(v string) error {
	if !usernameRx.MatchString(strings.ToLower(v)) {
		return fmt.Errorf("username must match %s", usernameRx.String())
	}
	return nil
}

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Coordinates checks geographic range.
func Coordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be within [-90, 90]")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be within [-180, 180]")
	}
	return nil
}

// -------- Request specific helpers ----------

// CreateSouvenir enforces the persisted-record invariant: non-empty title,
// audio, image and transcript, and in-range coordinates.
func CreateSouvenir(title, audioURL, imageURL, transcript string, lat, lng float64) error {
	if err := NonEmpty("title", title); err != nil {
		return err
	}
	if err := NonEmpty("audioUrl", audioURL); err != nil {
		return err
	}
	if err := NonEmpty("imageUrl", imageURL); err != nil {
		return err
	}
	if err := NonEmpty("transcript", transcript); err != nil {
		return err
	}
	return Coordinates(lat, lng)
}

// CreateProfile validates the sign-up payload.
func CreateProfile(username, email string) error {
	if err := Username(username); err != nil {
		return err
	}
	return Email(email)
}
