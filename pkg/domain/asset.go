package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AssetKind names a part of AssetBundle and the processor handling it.
type AssetKind string

const (
	// source references of images to be transformed.
	Images AssetKind = "images"

	// scripts and voices of narrations to be synthesized.
	Audios AssetKind = "audios"

	// a target url to be encoded as QR code.
	QRCode AssetKind = "qrCode"

	// references of assets to be removed.
	DeleteAssets AssetKind = "delete"
)

func (k AssetKind) String() string {
	return string(k)
}

func AsAssetKind(s string) (AssetKind, error) {
	switch s {
	case string(Images):
		return Images, nil
	case string(Audios):
		return Audios, nil
	case string(QRCode):
		return QRCode, nil
	case string(DeleteAssets):
		return DeleteAssets, nil
	default:
		return "", fmt.Errorf("'%s' is not AssetKind", s)
	}
}

// AssetBundle is the set of media operations attached to a mutation request.
//
// Each part is opaque and passed to its processor as it is.
// Whether a part is present decides whether its step runs: absence means "skip", not an error.
type AssetBundle struct {
	Images json.RawMessage `json:"images,omitempty"`
	Audios json.RawMessage `json:"audios,omitempty"`
	QRCode json.RawMessage `json:"qrCode,omitempty"`
	Delete json.RawMessage `json:"delete,omitempty"`
}

// Payload returns the part of the bundle for kind.
//
// It is nil when the part is absent or JSON null.
func (b AssetBundle) Payload(kind AssetKind) json.RawMessage {
	var p json.RawMessage
	switch kind {
	case Images:
		p = b.Images
	case Audios:
		p = b.Audios
	case QRCode:
		p = b.QRCode
	case DeleteAssets:
		p = b.Delete
	}

	if t := bytes.TrimSpace(p); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil
	}
	return p
}

// Has tells whether the part for kind is present.
func (b AssetBundle) Has(kind AssetKind) bool {
	return b.Payload(kind) != nil
}
