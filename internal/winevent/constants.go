// Package winevent models the WinEvent notification space: event
// identifiers, inclusive event ranges, the named sub-namespaces the OS
// reserves inside the global range, and the payload handed to user
// callbacks when an event fires.
package winevent

import "path"

// ID identifies one OS notification kind. IDs are totally ordered; EventMin
// and EventMax bound the valid space.
type ID uint32

// Reserved sentinels bounding the event space.
const (
	EventMin ID = 0x00000001
	EventMax ID = 0x7FFFFFFF
)

// System events (EVENT_SYSTEM_*).
const (
	SystemSound            ID = 0x0001
	SystemAlert            ID = 0x0002
	SystemForeground       ID = 0x0003
	SystemMenuStart        ID = 0x0004
	SystemMenuEnd          ID = 0x0005
	SystemMenuPopupStart   ID = 0x0006
	SystemMenuPopupEnd     ID = 0x0007
	SystemCaptureStart     ID = 0x0008
	SystemCaptureEnd       ID = 0x0009
	SystemMoveSizeStart    ID = 0x000A
	SystemMoveSizeEnd      ID = 0x000B
	SystemContextHelpStart ID = 0x000C
	SystemContextHelpEnd   ID = 0x000D
	SystemDragDropStart    ID = 0x000E
	SystemDragDropEnd      ID = 0x000F
	SystemDialogStart      ID = 0x0010
	SystemDialogEnd        ID = 0x0011
	SystemScrollingStart   ID = 0x0012
	SystemScrollingEnd     ID = 0x0013
	SystemSwitchStart      ID = 0x0014
	SystemSwitchEnd        ID = 0x0015
	SystemMinimizeStart    ID = 0x0016
	SystemMinimizeEnd      ID = 0x0017
	SystemDesktopSwitch    ID = 0x0020
	SystemEnd              ID = 0x00FF
)

// OEM-defined events.
const (
	OEMDefinedStart ID = 0x0101
	OEMDefinedEnd   ID = 0x01FF
)

// UI Automation events.
const (
	UIAEventIDStart ID = 0x4E00
	UIAEventIDEnd   ID = 0x4EFF
	UIAPropIDStart  ID = 0x7500
	UIAPropIDEnd    ID = 0x75FF
)

// Object events (EVENT_OBJECT_*).
const (
	ObjectCreate              ID = 0x8000
	ObjectDestroy             ID = 0x8001
	ObjectShow                ID = 0x8002
	ObjectHide                ID = 0x8003
	ObjectReorder             ID = 0x8004
	ObjectFocus               ID = 0x8005
	ObjectSelection           ID = 0x8006
	ObjectSelectionAdd        ID = 0x8007
	ObjectSelectionRemove     ID = 0x8008
	ObjectSelectionWithin     ID = 0x8009
	ObjectStateChange         ID = 0x800A
	ObjectLocationChange      ID = 0x800B
	ObjectNameChange          ID = 0x800C
	ObjectDescriptionChange   ID = 0x800D
	ObjectValueChange         ID = 0x800E
	ObjectParentChange        ID = 0x800F
	ObjectHelpChange          ID = 0x8010
	ObjectDefActionChange     ID = 0x8011
	ObjectAcceleratorChange   ID = 0x8012
	ObjectInvoked             ID = 0x8013
	ObjectTextSelectionChange ID = 0x8014
	ObjectContentScrolled     ID = 0x8015
	SystemArrangementPreview  ID = 0x8016
	ObjectCloaked             ID = 0x8017
	ObjectUncloaked           ID = 0x8018
	ObjectLiveRegionChanged   ID = 0x8019
	ObjectHostedInvalidated   ID = 0x8020
	ObjectDragStart           ID = 0x8021
	ObjectDragCancel          ID = 0x8022
	ObjectDragComplete        ID = 0x8023
	ObjectDragEnter           ID = 0x8024
	ObjectDragLeave           ID = 0x8025
	ObjectDragDropped         ID = 0x8026
	ObjectIMEShow             ID = 0x8027
	ObjectIMEHide             ID = 0x8028
	ObjectIMEChange           ID = 0x8029
	ObjectTextConversionTarget ID = 0x8030
	ObjectEnd                 ID = 0x80FF
)

// Accessibility Interoperability Alliance events.
const (
	AIAStart ID = 0xA000
	AIAEnd   ID = 0xAFFF
)

var eventNames = map[ID]string{
	SystemSound:               "EVENT_SYSTEM_SOUND",
	SystemAlert:               "EVENT_SYSTEM_ALERT",
	SystemForeground:          "EVENT_SYSTEM_FOREGROUND",
	SystemMenuStart:           "EVENT_SYSTEM_MENUSTART",
	SystemMenuEnd:             "EVENT_SYSTEM_MENUEND",
	SystemMenuPopupStart:      "EVENT_SYSTEM_MENUPOPUPSTART",
	SystemMenuPopupEnd:        "EVENT_SYSTEM_MENUPOPUPEND",
	SystemCaptureStart:        "EVENT_SYSTEM_CAPTURESTART",
	SystemCaptureEnd:          "EVENT_SYSTEM_CAPTUREEND",
	SystemMoveSizeStart:       "EVENT_SYSTEM_MOVESIZESTART",
	SystemMoveSizeEnd:         "EVENT_SYSTEM_MOVESIZEEND",
	SystemContextHelpStart:    "EVENT_SYSTEM_CONTEXTHELPSTART",
	SystemContextHelpEnd:      "EVENT_SYSTEM_CONTEXTHELPEND",
	SystemDragDropStart:       "EVENT_SYSTEM_DRAGDROPSTART",
	SystemDragDropEnd:         "EVENT_SYSTEM_DRAGDROPEND",
	SystemDialogStart:         "EVENT_SYSTEM_DIALOGSTART",
	SystemDialogEnd:           "EVENT_SYSTEM_DIALOGEND",
	SystemScrollingStart:      "EVENT_SYSTEM_SCROLLINGSTART",
	SystemScrollingEnd:        "EVENT_SYSTEM_SCROLLINGEND",
	SystemSwitchStart:         "EVENT_SYSTEM_SWITCHSTART",
	SystemSwitchEnd:           "EVENT_SYSTEM_SWITCHEND",
	SystemMinimizeStart:       "EVENT_SYSTEM_MINIMIZESTART",
	SystemMinimizeEnd:         "EVENT_SYSTEM_MINIMIZEEND",
	SystemDesktopSwitch:       "EVENT_SYSTEM_DESKTOPSWITCH",
	ObjectCreate:              "EVENT_OBJECT_CREATE",
	ObjectDestroy:             "EVENT_OBJECT_DESTROY",
	ObjectShow:                "EVENT_OBJECT_SHOW",
	ObjectHide:                "EVENT_OBJECT_HIDE",
	ObjectReorder:             "EVENT_OBJECT_REORDER",
	ObjectFocus:               "EVENT_OBJECT_FOCUS",
	ObjectSelection:           "EVENT_OBJECT_SELECTION",
	ObjectSelectionAdd:        "EVENT_OBJECT_SELECTIONADD",
	ObjectSelectionRemove:     "EVENT_OBJECT_SELECTIONREMOVE",
	ObjectSelectionWithin:     "EVENT_OBJECT_SELECTIONWITHIN",
	ObjectStateChange:         "EVENT_OBJECT_STATECHANGE",
	ObjectLocationChange:      "EVENT_OBJECT_LOCATIONCHANGE",
	ObjectNameChange:          "EVENT_OBJECT_NAMECHANGE",
	ObjectDescriptionChange:   "EVENT_OBJECT_DESCRIPTIONCHANGE",
	ObjectValueChange:         "EVENT_OBJECT_VALUECHANGE",
	ObjectParentChange:        "EVENT_OBJECT_PARENTCHANGE",
	ObjectHelpChange:          "EVENT_OBJECT_HELPCHANGE",
	ObjectDefActionChange:     "EVENT_OBJECT_DEFACTIONCHANGE",
	ObjectAcceleratorChange:   "EVENT_OBJECT_ACCELERATORCHANGE",
	ObjectInvoked:             "EVENT_OBJECT_INVOKED",
	ObjectTextSelectionChange: "EVENT_OBJECT_TEXTSELECTIONCHANGED",
	ObjectContentScrolled:     "EVENT_OBJECT_CONTENTSCROLLED",
	SystemArrangementPreview:  "EVENT_SYSTEM_ARRANGMENTPREVIEW",
	ObjectCloaked:             "EVENT_OBJECT_CLOAKED",
	ObjectUncloaked:           "EVENT_OBJECT_UNCLOAKED",
	ObjectLiveRegionChanged:   "EVENT_OBJECT_LIVEREGIONCHANGED",
	ObjectHostedInvalidated:   "EVENT_OBJECT_HOSTEDOBJECTSINVALIDATED",
	ObjectDragStart:           "EVENT_OBJECT_DRAGSTART",
	ObjectDragCancel:          "EVENT_OBJECT_DRAGCANCEL",
	ObjectDragComplete:        "EVENT_OBJECT_DRAGCOMPLETE",
	ObjectDragEnter:           "EVENT_OBJECT_DRAGENTER",
	ObjectDragLeave:           "EVENT_OBJECT_DRAGLEAVE",
	ObjectDragDropped:         "EVENT_OBJECT_DRAGDROPPED",
	ObjectIMEShow:             "EVENT_OBJECT_IME_SHOW",
	ObjectIMEHide:             "EVENT_OBJECT_IME_HIDE",
	ObjectIMEChange:           "EVENT_OBJECT_IME_CHANGE",
	ObjectTextConversionTarget: "EVENT_OBJECT_TEXTEDIT_CONVERSIONTARGETCHANGED",
}

var eventsByName map[string]ID

func init() {
	eventsByName = make(map[string]ID, len(eventNames))
	for id, name := range eventNames {
		eventsByName[name] = id
	}
}

// Name returns the canonical EVENT_* name for id, or "" if id is not a named
// event (ranges cover unnamed values too).
func Name(id ID) string {
	return eventNames[id]
}

// Lookup resolves a canonical EVENT_* name to its ID.
func Lookup(name string) (ID, bool) {
	id, ok := eventsByName[name]
	return id, ok
}

// Names returns every known event name. Order is unspecified.
func Names() []string {
	out := make([]string, 0, len(eventsByName))
	for name := range eventsByName {
		out = append(out, name)
	}
	return out
}

// systemTitles are window titles (shell-style patterns) that Windows uses
// internally. Users almost never care about events on these.
var systemTitles = []string{
	"OLEChannelWnd",
	"OleMainThreadWndName",
	"Default IME",
	"MSCTFIME UI",
	"DDE Server Window",
	"CicMarshalWnd",
	"OfficePowerManagerWindow",
	"System Clock, *",
	"System Promoted Notification Area",
	"Tray Input Indicator",
	"Action Center, *",
}

// IsSystemTitle reports whether title belongs to a window Windows uses
// internally (OLE marshalling windows, IME helpers, tray plumbing).
func IsSystemTitle(title string) bool {
	for _, pattern := range systemTitles {
		if ok, err := path.Match(pattern, title); err == nil && ok {
			return true
		}
	}
	return false
}
