package assets

import (
	"encoding/json"
	"fmt"
)

// QRPayload is the data encoded into an asset's label. Rendering the image
// is left to the printing side.
type QRPayload struct {
	AssetID    string `json:"asset_id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	DeviceType string `json:"device_type"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	Serial     string `json:"serial,omitempty"`
	BillNumber string `json:"bill_number,omitempty"`
	Vendor     string `json:"vendor,omitempty"`
}

// Encode returns the compact JSON form.
func (p QRPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	return string(b), nil
}

// DecodeQR parses a payload produced by Encode.
func DecodeQR(s string) (QRPayload, error) {
	var p QRPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return QRPayload{}, fmt.Errorf("decode qr payload: %w", err)
	}
	return p, nil
}
