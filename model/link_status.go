package model

// LinkStatus is the negotiated link state of a switch port as encoded by the
// device in the link_status array of the statistics page.
type LinkStatus uint8

const (
	LinkDown LinkStatus = iota
	LinkAuto
	Link10Half
	Link10Full
	Link100Half
	Link100Full
	Link1000Full
	// LinkEmpty is reported for every code the firmware does not label.
	LinkEmpty
)

// DecodeLinkStatus never fails, unknown codes map to LinkEmpty.
func DecodeLinkStatus(code uint64) LinkStatus {
	if code >= uint64(LinkEmpty) {
		return LinkEmpty
	}
	return LinkStatus(code)
}

// SpeedMbit returns the nominal speed the device associates with the status.
// Auto reports 1, which is not a real link rate.
func (l LinkStatus) SpeedMbit() uint64 {
	switch l {
	case LinkAuto:
		return 1
	case Link10Half:
		return 5
	case Link10Full:
		return 10
	case Link100Half:
		return 50
	case Link100Full:
		return 100
	case Link1000Full:
		return 1000
	default:
		return 0
	}
}

func (l LinkStatus) IsConnected() bool {
	switch l {
	case LinkDown, LinkAuto, LinkEmpty:
		return false
	default:
		return true
	}
}

// String returns the label the switch UI shows for the status.
func (l LinkStatus) String() string {
	switch l {
	case LinkDown:
		return "Link Down"
	case LinkAuto:
		return "Auto"
	case Link10Half:
		return "10Half"
	case Link10Full:
		return "10Full"
	case Link100Half:
		return "100Half"
	case Link100Full:
		return "100Full"
	case Link1000Full:
		return "1000Full"
	default:
		return ""
	}
}
