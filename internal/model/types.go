package model

import "time"

// Souvenir is a persisted audio+image+text+location memory record.
// All fields except TxID are immutable after insert.
type Souvenir struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title"`
	Story      *string   `json:"story,omitempty"`
	AudioURL   string    `json:"audioUrl"`
	ImageURL   string    `json:"imageUrl"`
	Transcript string    `json:"transcript"`
	TxID       *string   `json:"txId,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile is an account record tied to the auth identity.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateSouvenirRequest carries the fields composed by the creation workflow.
type CreateSouvenirRequest struct {
	Title      string  `json:"title"`
	Story      *string `json:"story,omitempty"`
	AudioURL   string  `json:"audioUrl"`
	ImageURL   string  `json:"imageUrl"`
	Transcript string  `json:"transcript"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// CreateProfileRequest is the sign-up payload.
type CreateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
