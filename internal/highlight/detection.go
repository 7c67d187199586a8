package highlight

import (
	"encoding/json"

	"github.com/ironsheep/scan-highlights/internal/geometry"
)

// Symbology is the barcode type reported by the detector.
type Symbology string

// Supported symbologies. Anything else the detector reports maps to Unknown.
const (
	Aztec      Symbology = "aztec"
	Codabar    Symbology = "codabar"
	Code128    Symbology = "code-128"
	Code39     Symbology = "code-39"
	Code93     Symbology = "code-93"
	DataMatrix Symbology = "data-matrix"
	EAN13      Symbology = "ean-13"
	EAN8       Symbology = "ean-8"
	GS1DataBar Symbology = "gs1-databar"
	ITF        Symbology = "itf"
	MSIPlessey Symbology = "msi-plessey"
	PDF417     Symbology = "pdf-417"
	QR         Symbology = "qr"
	UPCA       Symbology = "upc-a"
	UPCE       Symbology = "upc-e"
	Unknown    Symbology = "unknown"
)

var symbologies = map[Symbology]struct{}{
	Aztec: {}, Codabar: {}, Code128: {}, Code39: {}, Code93: {},
	DataMatrix: {}, EAN13: {}, EAN8: {}, GS1DataBar: {}, ITF: {},
	MSIPlessey: {}, PDF417: {}, QR: {}, UPCA: {}, UPCE: {}, Unknown: {},
}

// ParseSymbology maps a detector type name to a Symbology.
func ParseSymbology(s string) Symbology {
	if _, ok := symbologies[Symbology(s)]; ok {
		return Symbology(s)
	}
	return Unknown
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Symbology) UnmarshalText(b []byte) error {
	*s = ParseSymbology(string(b))
	return nil
}

// Detection is one barcode found in a frame, in sensor space. It is never
// modified after the detector produces it.
type Detection struct {
	// Value is the decoded payload, nil when the detector could not decode it.
	Value *string `json:"value"`

	// Kind is the symbology.
	Kind Symbology `json:"type"`

	// BoundingBox is the detector's own box in sensor space.
	BoundingBox geometry.BoundingBox `json:"boundingBox"`

	// CornerPoints is the closed outline in sensor space, in detector order.
	CornerPoints []geometry.Point `json:"cornerPoints"`

	// Native is the platform record, passed through without interpretation.
	Native json.RawMessage `json:"native,omitempty"`
}

// DisplayValue returns the decoded value or "unknown".
func (d Detection) DisplayValue() string {
	if d.Value == nil {
		return "unknown"
	}
	return *d.Value
}

// Highlight is a detection mapped to display space for one render pass.
//
// The embedded Detection keeps the sensor-space record; the CornerPoints and
// BoundingBox fields declared here shadow it with display-space values, so
// JSON output carries the display geometry.
type Highlight struct {
	Detection

	Key          string               `json:"key"`
	CornerPoints []geometry.Point     `json:"cornerPoints"`
	BoundingBox  geometry.BoundingBox `json:"boundingBox"`
}

// StringPtr returns a pointer to s, for building detections in code.
func StringPtr(s string) *string {
	return &s
}
