package mint

import (
	"context"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/rs/zerolog"
)

const assetUnitName = "SVNR"

// AlgorandMinter creates one non-fungible ASA per souvenir on an Algorand
// node. The signing account comes from a server-side mnemonic.
type AlgorandMinter struct {
	client  *algod.Client
	account crypto.Account
	log     zerolog.Logger
}

// NewAlgorand connects to the node and derives the minting account.
func NewAlgorand(nodeURL, token, accountMnemonic string, log zerolog.Logger) (*AlgorandMinter, error) {
	client, err := algod.MakeClient(nodeURL, token)
	if err != nil {
		return nil, fmt.Errorf("algod client: %w", err)
	}
	sk, err := mnemonic.ToPrivateKey(accountMnemonic)
	if err != nil {
		return nil, fmt.Errorf("ledger mnemonic: %w", err)
	}
	account, err := crypto.AccountFromPrivateKey(sk)
	if err != nil {
		return nil, fmt.Errorf("ledger account: %w", err)
	}
	return &AlgorandMinter{client: client, account: account, log: log}, nil
}

// Mint creates a 1-of-1 asset recording the souvenir's title and metadata
// URL. The note carries the coordinates.
func (m *AlgorandMinter) Mint(ctx context.Context, a Asset) (string, error) {
	sp, err := m.client.SuggestedParams().Do(ctx)
	if err != nil {
		return "", fmt.Errorf("suggested params: %w", err)
	}

	note := []byte(fmt.Sprintf("%s @ %.6f,%.6f", a.Description, a.Latitude, a.Longitude))
	addr := m.account.Address.String()

	txn, err := transaction.MakeAssetCreateTxn(addr, note, sp,
		1, 0, false,
		addr, "", "", "",
		assetUnitName, a.Title, a.MetadataURL, "")
	if err != nil {
		return "", fmt.Errorf("asset create txn: %w", err)
	}

	txID, stx, err := crypto.SignTransaction(m.account.PrivateKey, txn)
	if err != nil {
		return "", fmt.Errorf("sign txn: %w", err)
	}
	if _, err := m.client.SendRawTransaction(stx).Do(ctx); err != nil {
		return "", fmt.Errorf("send txn: %w", err)
	}

	m.log.Info().Str("tx_id", txID).Str("title", a.Title).Msg("souvenir token minted")
	return txID, nil
}
