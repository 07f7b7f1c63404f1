package client

import (
	"errors"
	"strings"

	"wallet_sync/internal/domain/entity"

	"github.com/ethereum/go-ethereum/crypto"
)

// EVMAccountDeriver implements port.AccountDeriver using go-ethereum's
// secp256k1 key handling. Derivation is local; the connection is only the
// binding target and is never queried here.
type EVMAccountDeriver struct{}

// NewEVMAccountDeriver creates a new EVMAccountDeriver.
func NewEVMAccountDeriver() *EVMAccountDeriver {
	return &EVMAccountDeriver{}
}

// Derive builds an account from the credential bound to the given connection.
func (d *EVMAccountDeriver) Derive(credential string, conn entity.Connection) (*entity.Account, error) {
	if conn == nil {
		return nil, &entity.DerivationError{Err: errors.New("no connection to bind account to")}
	}

	trimmed := strings.TrimSpace(credential)
	trimmed = strings.TrimPrefix(trimmed, "0x")
	trimmed = strings.TrimPrefix(trimmed, "0X")

	privateKey, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, &entity.DerivationError{Err: err}
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	return &entity.Account{Address: address.Hex()}, nil
}
