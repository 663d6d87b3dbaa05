package plant

import "strings"

// ServiceKind identifies one of the three tracked ecosystem services.
// The zero value is not a valid kind.
type ServiceKind uint8

const (
	NitrogenProvision ServiceKind = iota + 1
	WaterStorageAndReturn
	SoilStructuration
)

// ServiceCount is the length of every per-service array.
const ServiceCount = 3

// Kinds lists the valid kinds in index order.
var Kinds = [ServiceCount]ServiceKind{NitrogenProvision, WaterStorageAndReturn, SoilStructuration}

var kindTags = map[string]ServiceKind{
	"nitrogen_provision":       NitrogenProvision,
	"storage_and_return_water": WaterStorageAndReturn,
	"soil_structuration":       SoilStructuration,
}

// ParseServiceKind maps a dataset tag to its kind.
func ParseServiceKind(tag string) (ServiceKind, bool) {
	kind, ok := kindTags[tag]
	return kind, ok
}

// ParseServiceKindName accepts either a dataset tag or the kind's name, case-insensitively.
func ParseServiceKindName(raw string) (ServiceKind, bool) {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if kind, ok := kindTags[clean]; ok {
		return kind, true
	}
	for _, kind := range Kinds {
		if strings.ToLower(kind.String()) == clean {
			return kind, true
		}
	}
	return 0, false
}

// Valid reports whether k is one of the three services.
func (k ServiceKind) Valid() bool {
	return k >= NitrogenProvision && k <= SoilStructuration
}

// Index returns the array slot for k, or -1 for an invalid kind.
func (k ServiceKind) Index() int {
	if !k.Valid() {
		return -1
	}
	return int(k) - 1
}

// Tag returns the dataset tag for k.
func (k ServiceKind) Tag() string {
	switch k {
	case NitrogenProvision:
		return "nitrogen_provision"
	case WaterStorageAndReturn:
		return "storage_and_return_water"
	case SoilStructuration:
		return "soil_structuration"
	default:
		return ""
	}
}

func (k ServiceKind) String() string {
	switch k {
	case NitrogenProvision:
		return "NitrogenProvision"
	case WaterStorageAndReturn:
		return "WaterStorageAndReturn"
	case SoilStructuration:
		return "SoilStructuration"
	default:
		return "None"
	}
}
