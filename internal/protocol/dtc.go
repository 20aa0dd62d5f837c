package protocol

// DtcCategory is the fault-domain letter prefix of a diagnostic trouble code.
type DtcCategory string

const (
	DtcCategoryPowertrain DtcCategory = "P"
	DtcCategoryChassis    DtcCategory = "C"
	DtcCategoryBody       DtcCategory = "B"
	DtcCategoryNetwork    DtcCategory = "U"
)

// DtcSeverity is an advisory classification of how urgently a code should
// be surfaced to a fleet operator. The core engine never assigns anything
// but DtcSeverityUnknown; a downstream enrichment step (the static DTC
// description table) owns mapping codes to severity and description text.
type DtcSeverity string

const (
	DtcSeverityInfo     DtcSeverity = "info"
	DtcSeverityWarning  DtcSeverity = "warning"
	DtcSeverityCritical DtcSeverity = "critical"
	DtcSeverityUnknown  DtcSeverity = "unknown"
)

// FreezeFrame is the snapshot of PID readings captured by the ECU at the
// moment a DTC was set.
type FreezeFrame struct {
	DtcCode  string             `json:"dtc_code"`
	Readings map[string]float64 `json:"readings,omitempty"`
}

// DtcCode is a single decoded diagnostic trouble code, e.g. "P0300".
type DtcCode struct {
	Code        string       `json:"code"`
	Category    DtcCategory  `json:"category"`
	Severity    DtcSeverity  `json:"severity"`
	Description string       `json:"description,omitempty"`
	MilStatus   bool         `json:"mil_status"`
	FreezeFrame *FreezeFrame `json:"freeze_frame,omitempty"`
}

// ParseCategory derives a DtcCategory from the top two bits of a DTC's
// first byte, per SAE J2012.
func ParseCategory(firstByte byte) DtcCategory {
	switch (firstByte >> 6) & 0x3 {
	case 0:
		return DtcCategoryPowertrain
	case 1:
		return DtcCategoryChassis
	case 2:
		return DtcCategoryBody
	default:
		return DtcCategoryNetwork
	}
}
