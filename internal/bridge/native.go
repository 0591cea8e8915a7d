package bridge

import "strings"

// The backend interfaces below are implemented by the native side
// (Swift/Kotlin through gomobile, or a C library through internal/ffi) and by
// internal/fallback when no native side exists.
//
// Rules for gomobile compatibility:
//   - methods may only use primitive types, strings, []byte, or other
//     gomobile-bound types as parameters and return values
//   - no variadic parameters
//   - callbacks are interfaces with a single method
//
// Every callback may arrive on any thread. Implementations call it exactly
// once per request.

// ButtonSeparator joins button titles into the single string passed to
// ShowPopup. Titles may contain newlines, so a control character is used.
const ButtonSeparator = "\x1f"

type PopupCallback interface {
	// PopupClosed receives the pressed button index, or -1 when the dialog
	// was dismissed without a choice.
	PopupClosed(index int)
}

type PopupBackend interface {
	ShowPopup(
		title string,
		message string,
		buttonTitles string,
		buttonCount int,
		callback PopupCallback,
	)
}

type NetworkTypeCallback interface {
	NetworkTypeChanged(typeIndex int)
}

type NetworkBackend interface {
	RegisterNetworkTypeChangedCallback(callback NetworkTypeCallback)
	GetCurrentNetworkType() int
	// GetInternetReachability returns 0 (not reachable), 1 (carrier data)
	// or 2 (local area network).
	GetInternetReachability() int
	CleanupResources()
}

type SharingCallback interface {
	SharingFinished(destination string, completed bool)
}

type SharingBackend interface {
	Share(
		text string,
		url string,
		imageData []byte,
		imageSize int,
		callback SharingCallback,
	)
}

func JoinButtons(buttons []string) string {
	return strings.Join(buttons, ButtonSeparator)
}

func SplitButtons(joined string, count int) []string {
	if count <= 0 {
		return nil
	}
	parts := strings.SplitN(joined, ButtonSeparator, count)
	for len(parts) < count {
		parts = append(parts, "")
	}
	return parts
}

// Dialog button roles as reported by platform alert dialogs that only know
// positive, neutral and negative buttons.
type ButtonRole int

const (
	RolePositive ButtonRole = iota
	RoleNeutral
	RoleNegative
)

// ButtonIndex maps a dialog role back to the index of the title it was
// created from. With two buttons the second one is the negative button.
func ButtonIndex(role ButtonRole, buttonCount int) int {
	switch role {
	case RolePositive:
		return 0
	case RoleNeutral:
		return 1
	case RoleNegative:
		return buttonCount - 1
	default:
		return -1
	}
}

// ButtonRoleFor is the inverse of ButtonIndex.
func ButtonRoleFor(index int, buttonCount int) (ButtonRole, bool) {
	switch index {
	case 0:
		return RolePositive, true
	case 1:
		if buttonCount > 2 {
			return RoleNeutral, true
		}
		return RoleNegative, true
	case 2:
		return RoleNegative, true
	default:
		return 0, false
	}
}

type PopupCallbackFunc func(index int)

func (f PopupCallbackFunc) PopupClosed(index int) { f(index) }

type NetworkTypeCallbackFunc func(typeIndex int)

func (f NetworkTypeCallbackFunc) NetworkTypeChanged(typeIndex int) { f(typeIndex) }

type SharingCallbackFunc func(destination string, completed bool)

func (f SharingCallbackFunc) SharingFinished(destination string, completed bool) {
	f(destination, completed)
}
