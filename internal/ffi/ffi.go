// Package ffi loads a native plugin library exporting the C entry points
// below and exposes it as bridge backends:
//
//	void _ShowPopup(const char* title, const char* message, const char** buttons, int count, void (*cb)(int));
//	void _RegisterNetworkTypeChangedCallback(void (*cb)(int));
//	int  _GetCurrentNetworkType(void);
//	int  _GetInternetReachability(void);  // optional
//	void _CleanupResources(void);
//	void _Share(const char* text, const char* url, const unsigned char* data, unsigned int size, void (*cb)(const char*, bool));
//
// Each capability is optional; a library exporting only the popup symbol
// provides only a popup backend.
package ffi

import (
	"errors"
	"unsafe"
)

var ErrUnsupported = errors.New("ffi: dynamic libraries are not supported on this platform")

const (
	symShowPopup       = "_ShowPopup"
	symRegisterNetwork = "_RegisterNetworkTypeChangedCallback"
	symCurrentNetwork  = "_GetCurrentNetworkType"
	symReachability    = "_GetInternetReachability"
	symCleanup         = "_CleanupResources"
	symShare           = "_Share"
)

const (
	slotPopup   = "popup"
	slotNetwork = "network"
	slotSharing = "sharing"
)

// cStrings returns NUL-terminated copies of ss and an array of pointers to
// them. The caller keeps both alive until the C call returns.
func cStrings(ss []string) ([][]byte, []*byte) {
	bufs := make([][]byte, len(ss))
	ptrs := make([]*byte, len(ss)+1)
	for i, s := range ss {
		bufs[i] = append([]byte(s), 0)
		ptrs[i] = &bufs[i][0]
	}
	return bufs, ptrs
}

func goString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := (*byte)(unsafe.Pointer(ptr))
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// C callbacks receive int and bool arguments in full registers; only the
// low bits are defined.
func cInt(v uintptr) int {
	return int(int32(uint32(v)))
}

func cBool(v uintptr) bool {
	return uint8(v) != 0
}
