package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/echomap/echomap/internal/blob"
	"github.com/echomap/echomap/internal/metrics"
	"github.com/echomap/echomap/internal/mint"
	"github.com/echomap/echomap/internal/model"
	"github.com/echomap/echomap/internal/store"
)

// SouvenirService orchestrates the persistence step of the creation
// workflow: best-effort mint, then a single atomic insert.
type SouvenirService struct {
	store       store.Store
	blobs       blob.Store
	minter      mint.Minter
	imageBucket string
	log         zerolog.Logger
}

func NewSouvenirService(s store.Store, blobs blob.Store, minter mint.Minter, imageBucket string, log zerolog.Logger) *SouvenirService {
	return &SouvenirService{store: s, blobs: blobs, minter: minter, imageBucket: imageBucket, log: log}
}

type tokenMetadata struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Create mints a token for the composed souvenir (failure degrades to a mock
// transaction id) and inserts the record. Insert failure persists nothing.
func (s *SouvenirService) Create(ctx context.Context, ownerID string, req model.CreateSouvenirRequest) (*model.Souvenir, error) {
	sv := &model.Souvenir{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Title:      strings.TrimSpace(req.Title),
		Story:      req.Story,
		AudioURL:   req.AudioURL,
		ImageURL:   req.ImageURL,
		Transcript: req.Transcript,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}

	txID, real := mint.BestEffort(ctx, s.minter, mint.Asset{
		Title:       sv.Title,
		Description: s.description(sv),
		MetadataURL: s.uploadMetadata(ctx, sv),
		Latitude:    sv.Latitude,
		Longitude:   sv.Longitude,
	})
	if !real {
		metrics.MintFallbacks.Inc()
		s.log.Warn().Str("title", sv.Title).Msg("mint degraded to mock transaction id")
	}
	sv.TxID = &txID

	out, err := s.store.Souvenirs().Create(ctx, sv)
	if err != nil {
		return nil, err
	}
	metrics.SouvenirsCreated.Inc()
	return out, nil
}

func (s *SouvenirService) description(sv *model.Souvenir) string {
	if sv.Story != nil && *sv.Story != "" {
		return *sv.Story
	}
	return sv.Transcript
}

// uploadMetadata stores the token metadata JSON next to the images. A failed
// upload returns an empty URL; the mint proceeds without it.
func (s *SouvenirService) uploadMetadata(ctx context.Context, sv *model.Souvenir) string {
	if s.blobs == nil {
		return ""
	}
	meta := tokenMetadata{
		Name:        sv.Title,
		Description: s.description(sv),
		Image:       sv.ImageURL,
		Latitude:    sv.Latitude,
		Longitude:   sv.Longitude,
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	url, err := s.blobs.Upload(ctx, s.imageBucket, blob.MetadataKey(sv.ID), strings.NewReader(string(raw)), "application/json")
	if err != nil {
		s.log.Warn().Err(err).Msg("token metadata upload failed; minting without metadata URL")
		return ""
	}
	return url
}

// List returns all souvenirs, newest first (public map read).
func (s *SouvenirService) List(ctx context.Context) ([]*model.Souvenir, error) {
	return s.store.Souvenirs().List(ctx)
}

// Get returns one souvenir by id.
func (s *SouvenirService) Get(ctx context.Context, id string) (*model.Souvenir, error) {
	return s.store.Souvenirs().GetByID(ctx, id)
}

// Delete removes a souvenir owned by ownerID.
func (s *SouvenirService) Delete(ctx context.Context, ownerID, id string) error {
	return s.store.Souvenirs().Delete(ctx, ownerID, id)
}
