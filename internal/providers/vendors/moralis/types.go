package moralis

import (
	"bytes"
	"encoding/json"
)

// ContractNFTsResponse represents one page of the contract NFTs endpoint
type ContractNFTsResponse struct {
	Result []NFT   `json:"result"`
	Cursor *string `json:"cursor"`
}

// NFT is the indexing API representation of one token
type NFT struct {
	TokenAddress  string   `json:"token_address"`
	TokenID       string   `json:"token_id"`
	OwnerOf       string   `json:"owner_of"`
	MinterAddress string   `json:"minter_address"`
	Name          string   `json:"name"`
	PossibleSpam  bool     `json:"possible_spam"`
	Metadata      Metadata `json:"metadata"`
}

// Metadata is the token metadata. The upstream sends it as an embedded
// object, as a JSON-encoded string, or as null. Undecodable content is
// treated as empty rather than failing the whole page.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ImageURL    string `json:"image_url"`
	CreatedBy   string `json:"created_by"`
}

// UnmarshalJSON decodes object, string-encoded and null metadata
func (m *Metadata) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return nil
		}
		data = []byte(encoded)
	}

	type plain Metadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*m = Metadata(p)
	return nil
}

// ImageURI returns the first non-empty image locator
func (m Metadata) ImageURI() string {
	if m.Image != "" {
		return m.Image
	}
	return m.ImageURL
}
