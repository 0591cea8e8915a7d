package models

import "strconv"

// NetworkType values are shared with the native plugins and must not be
// renumbered. They are ordered by rough throughput.
type NetworkType int

const (
	NetworkUnknown  NetworkType = -1
	NetworkXRTT     NetworkType = 0
	NetworkCDMA     NetworkType = 1
	NetworkIDEN     NetworkType = 2
	NetworkGPRS     NetworkType = 3
	NetworkEdge     NetworkType = 4
	NetworkUMTS     NetworkType = 5
	NetworkEVDORev0 NetworkType = 6
	NetworkEVDORevA NetworkType = 7
	NetworkEVDORevB NetworkType = 8
	NetworkEHRPD    NetworkType = 9
	NetworkHSPA     NetworkType = 10
	NetworkHSDPA    NetworkType = 11
	NetworkHSUPA    NetworkType = 12
	NetworkHSPAP    NetworkType = 13
	NetworkLTE      NetworkType = 14
)

var networkTypeNames = map[NetworkType]string{
	NetworkUnknown:  "unknown",
	NetworkXRTT:     "1xRTT",
	NetworkCDMA:     "CDMA",
	NetworkIDEN:     "IDEN",
	NetworkGPRS:     "GPRS",
	NetworkEdge:     "Edge",
	NetworkUMTS:     "UMTS",
	NetworkEVDORev0: "EVDO_Rev0",
	NetworkEVDORevA: "EVDO_RevA",
	NetworkEVDORevB: "EVDO_RevB",
	NetworkEHRPD:    "eHRPD",
	NetworkHSPA:     "HSPA",
	NetworkHSDPA:    "HSDPA",
	NetworkHSUPA:    "HSUPA",
	NetworkHSPAP:    "HSPAP",
	NetworkLTE:      "LTE",
}

// NetworkTypeFromIndex maps a raw native value onto the enum. Values the
// native side should never send collapse to NetworkUnknown.
func NetworkTypeFromIndex(index int) NetworkType {
	t := NetworkType(index)
	if _, ok := networkTypeNames[t]; !ok {
		return NetworkUnknown
	}
	return t
}

func (t NetworkType) String() string {
	if name, ok := networkTypeNames[t]; ok {
		return name
	}
	return "NetworkType(" + strconv.Itoa(int(t)) + ")"
}

// FasterThan compares by throughput rank.
func (t NetworkType) FasterThan(other NetworkType) bool {
	return t > other
}

type Reachability int

const (
	NotReachable                   Reachability = 0
	ReachableViaCarrierDataNetwork Reachability = 1
	ReachableViaLocalAreaNetwork   Reachability = 2
)

func ReachabilityFromIndex(index int) Reachability {
	switch r := Reachability(index); r {
	case NotReachable, ReachableViaCarrierDataNetwork, ReachableViaLocalAreaNetwork:
		return r
	default:
		return NotReachable
	}
}

func (r Reachability) String() string {
	switch r {
	case NotReachable:
		return "not-reachable"
	case ReachableViaCarrierDataNetwork:
		return "carrier"
	case ReachableViaLocalAreaNetwork:
		return "lan"
	default:
		return "Reachability(" + strconv.Itoa(int(r)) + ")"
	}
}
