// Package ethereum provides secp256k1 signing keys and Ethereum style
// signatures. The credential service uses them to attest census
// publications and issued credentials, so any client can check that a
// receipt really came from the registrar address.
package ethereum

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/anoncred/util"
)

// SignatureLength is the size in bytes of an Ethereum signature, 64 bytes
// of R and S plus the recovery id.
const SignatureLength = 65

// SignKeys holds an ECDSA keypair on the secp256k1 curve.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys creates an empty SignKeys. Call Generate or AddHexKey to give
// it a keypair.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate creates a fresh random keypair.
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a private key given as a hex string, with or without
// the 0x prefix.
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// HexString returns the compressed public key and the private key as hex
// strings.
func (k *SignKeys) HexString() (string, string) {
	pubHex := fmt.Sprintf("%x", ethcrypto.CompressPubkey(&k.Public))
	privHex := fmt.Sprintf("%x", ethcrypto.FromECDSA(&k.Private))
	return pubHex, privHex
}

// PublicKey returns the compressed public key.
func (k *SignKeys) PublicKey() []byte {
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the Ethereum address derived from the public key.
func (k *SignKeys) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the checksummed hex representation of the address.
func (k *SignKeys) AddressString() string {
	return k.Address().String()
}

// SignEthereum signs a message with the Ethereum signed message prefix.
// The message is the raw payload, not a hash.
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	return ethcrypto.Sign(Hash(message), &k.Private)
}

// Hash computes the Keccak256 hash of the message prefixed the Ethereum
// signed message way.
func Hash(message []byte) []byte {
	return HashRaw(fmt.Appendf(nil, "\x19Ethereum Signed Message:\n%d%s", len(message), message))
}

// HashRaw computes the plain Keccak256 hash of the data.
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

// AddrFromPublicKey returns the Ethereum address for a public key given in
// compressed or uncompressed form.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	var pubKey *ecdsa.PublicKey
	var err error
	switch len(pub) {
	case 33:
		pubKey, err = ethcrypto.DecompressPubkey(pub)
	case 65:
		pubKey, err = ethcrypto.UnmarshalPubkey(pub)
	default:
		return common.Address{}, fmt.Errorf("invalid public key length %d", len(pub))
	}
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}

// AddrFromSignature recovers the address that signed the message with
// SignEthereum.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}
	pubKey, err := ethcrypto.SigToPub(Hash(message), signature)
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}

// VerifySignature reports whether the signature over the message was
// produced by the given address.
func VerifySignature(message, signature []byte, address common.Address) bool {
	recovered, err := AddrFromSignature(message, signature)
	if err != nil {
		return false
	}
	return recovered == address
}
