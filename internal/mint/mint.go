// Package mint wraps the ledger client that turns a souvenir into a
// collectible token. Minting is a best-effort enrichment: any failure yields
// a mock transaction id and never blocks the save.
package mint

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Asset describes the token minted for one souvenir.
type Asset struct {
	Title       string
	Description string
	MetadataURL string
	Latitude    float64
	Longitude   float64
}

// Minter creates a token for a souvenir and returns the ledger transaction
// id. Implementations must not return partial results on error.
type Minter interface {
	Mint(ctx context.Context, a Asset) (txID string, err error)
}

// MockTxID builds the substitute transaction id used when minting fails or
// is disabled. The shape is stable: ALGO_MOCK_<millis>_<random>.
func MockTxID() string {
	return fmt.Sprintf("ALGO_MOCK_%d_%d", time.Now().UnixMilli(), rand.Intn(1_000_000))
}

// BestEffort runs m and substitutes a mock id on any failure. The second
// return reports whether a real mint happened. A nil Minter always mocks.
func BestEffort(ctx context.Context, m Minter, a Asset) (string, bool) {
	if m == nil {
		return MockTxID(), false
	}
	txID, err := m.Mint(ctx, a)
	if err != nil || txID == "" {
		return MockTxID(), false
	}
	return txID, true
}
