// internal/blockchain/solbc/token_metadata.go
package solbc

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
)

// Token-2022 mint layout: 82-byte base mint padded to the 165-byte account size,
// one AccountType byte, then TLV extensions (u16 type, u16 length, value).
const (
	baseMintLen        = 82
	extensionsOffset   = 165
	accountTypeMint    = 1
	tlvHeaderLen       = 4
	maxMetadataDocSize = 1 << 20
)

// Token-2022 extension type discriminants.
const (
	extMetadataPointer    uint16 = 18
	extTokenMetadata      uint16 = 19
	extGroupMemberPointer uint16 = 22
	extTokenGroupMember   uint16 = 23
)

var (
	// ErrMintNotFound is returned when the mint account does not exist.
	ErrMintNotFound = errors.New("mint account not found")
	// ErrNoMetadata is returned when the mint carries no TokenMetadata extension.
	ErrNoMetadata = errors.New("mint has no token metadata extension")
)

// Token2022ProgramID is the SPL Token-2022 program.
var Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// TokenMetadata is the display metadata of an NFT mint.
type TokenMetadata struct {
	Mint   solana.PublicKey
	Name   string
	Symbol string
	URI    string
	Image  string
	Group  solana.PublicKey
}

type tokenMetadataExt struct {
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Name            string
	Symbol          string
	URI             string
}

type groupMemberExt struct {
	Mint         solana.PublicKey
	Group        solana.PublicKey
	MemberNumber uint64
}

type groupMemberPointerExt struct {
	Authority     solana.PublicKey
	MemberAddress solana.PublicKey
}

// MetadataReader reads NFT metadata from the mint account and its off-chain JSON.
type MetadataReader struct {
	logger     *zap.Logger
	httpClient *http.Client
}

func NewMetadataReader(logger *zap.Logger, timeout time.Duration) *MetadataReader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MetadataReader{
		logger: logger.Named("token-metadata"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetTokenMetadata reads name, uri and group from the mint and then the image from
// the uri document. Failing to fetch the document only leaves Image empty.
func (r *MetadataReader) GetTokenMetadata(
	ctx context.Context,
	client blockchain.Client,
	mint solana.PublicKey,
) (*TokenMetadata, error) {
	acc, err := client.GetAccountInfo(ctx, mint)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
		}
		return nil, fmt.Errorf("failed to get mint account: %w", err)
	}
	if acc == nil || acc.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}

	metadata, err := ParseMintMetadata(mint, acc.Value.Data.GetBinary())
	if err != nil {
		return nil, err
	}

	if metadata.URI != "" {
		image, err := r.fetchImage(ctx, metadata.URI)
		if err != nil {
			r.logger.Debug("failed to enrich metadata from uri",
				zap.String("mint", mint.String()),
				zap.String("uri", metadata.URI),
				zap.Error(err))
		} else {
			metadata.Image = image
		}
	}

	r.logger.Debug("token metadata retrieved",
		zap.String("mint", mint.String()),
		zap.String("name", metadata.Name),
		zap.String("group", metadata.Group.String()))

	return metadata, nil
}

// ParseMintMetadata decodes the TokenMetadata and group-member extensions of a
// Token-2022 mint.
func ParseMintMetadata(mint solana.PublicKey, data []byte) (*TokenMetadata, error) {
	if len(data) < baseMintLen {
		return nil, fmt.Errorf("invalid mint data length: %d", len(data))
	}
	if len(data) <= extensionsOffset {
		return nil, ErrNoMetadata
	}
	if data[extensionsOffset] != accountTypeMint {
		return nil, fmt.Errorf("account is not a mint: type %d", data[extensionsOffset])
	}

	metadata := &TokenMetadata{Mint: mint}
	var (
		found       bool
		memberGroup solana.PublicKey
		memberPtr   solana.PublicKey
	)

	tlv := data[extensionsOffset+1:]
	for len(tlv) >= tlvHeaderLen {
		extType := binary.LittleEndian.Uint16(tlv[0:2])
		extLen := int(binary.LittleEndian.Uint16(tlv[2:4]))
		if extType == 0 {
			break
		}
		if len(tlv) < tlvHeaderLen+extLen {
			return nil, fmt.Errorf("truncated extension %d", extType)
		}
		value := tlv[tlvHeaderLen : tlvHeaderLen+extLen]

		switch extType {
		case extTokenMetadata:
			var ext tokenMetadataExt
			if err := bin.NewBorshDecoder(value).Decode(&ext); err != nil {
				return nil, fmt.Errorf("failed to decode token metadata: %w", err)
			}
			metadata.Name = ext.Name
			metadata.Symbol = ext.Symbol
			metadata.URI = ext.URI
			found = true
		case extTokenGroupMember:
			var ext groupMemberExt
			if err := bin.NewBorshDecoder(value).Decode(&ext); err != nil {
				return nil, fmt.Errorf("failed to decode group member: %w", err)
			}
			memberGroup = ext.Group
		case extGroupMemberPointer:
			var ext groupMemberPointerExt
			if err := bin.NewBorshDecoder(value).Decode(&ext); err != nil {
				return nil, fmt.Errorf("failed to decode group member pointer: %w", err)
			}
			memberPtr = ext.MemberAddress
		}

		tlv = tlv[tlvHeaderLen+extLen:]
	}

	if !found {
		return nil, ErrNoMetadata
	}

	// The member extension names the group directly; the pointer is a fallback.
	switch {
	case !memberGroup.IsZero():
		metadata.Group = memberGroup
	case !memberPtr.IsZero():
		metadata.Group = memberPtr
	}

	return metadata, nil
}

func (r *MetadataReader) fetchImage(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata uri returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataDocSize))
	if err != nil {
		return "", fmt.Errorf("failed to read metadata document: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("metadata document is not valid json")
	}

	if image := gjson.GetBytes(body, "image").String(); image != "" {
		return image, nil
	}
	if image := gjson.GetBytes(body, "properties.files.0.uri").String(); image != "" {
		return image, nil
	}
	return "", fmt.Errorf("metadata document has no image")
}
