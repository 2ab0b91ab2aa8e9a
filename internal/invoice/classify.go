package invoice

import (
	"strings"

	"github.com/joseph-ayodele/invoice-assets/constants"
)

type keywordSet[T ~string] struct {
	label    T
	keywords []string
}

// Declaration order is the precedence order: the first set owning a matching
// keyword wins.
var categoryKeywords = []keywordSet[constants.Category]{
	{constants.Computer, []string{"computer", "desktop", "pc", "cpu", "tower", "workstation", "system"}},
	{constants.Laptop, []string{"laptop", "notebook", "ultrabook", "chromebook"}},
	{constants.Printer, []string{"printer", "printing", "inkjet", "laser", "multifunction"}},
	{constants.Monitor, []string{"monitor", "display", "screen", "lcd", "led", "tft"}},
	{constants.Keyboard, []string{"keyboard", "keys"}},
	{constants.Mouse, []string{"mouse", "mice"}},
	{constants.Tablet, []string{"tablet", "ipad"}},
	{constants.Phone, []string{"phone", "mobile", "smartphone"}},
	{constants.Camera, []string{"camera", "webcam", "camcorder"}},
	{constants.Projector, []string{"projector", "projection"}},
	{constants.Scanner, []string{"scanner", "scanning"}},
	{constants.Server, []string{"server", "rack"}},
	{constants.Router, []string{"router", "wifi", "wireless"}},
	{constants.Switch, []string{"switch", "ethernet"}},
	{constants.UPS, []string{"ups", "battery", "backup"}},
	{constants.Cable, []string{"cable", "wire", "cord"}},
	{constants.Adapter, []string{"adapter", "charger", "power"}},
	{constants.Storage, []string{"hdd", "ssd", "hard drive", "storage", "disk"}},
	{constants.Memory, []string{"ram", "memory", "dimm"}},
}

var deviceTypeKeywords = []keywordSet[constants.DeviceType]{
	{constants.DeviceLaptop, []string{"laptop", "notebook", "ultrabook", "chromebook"}},
	{constants.DevicePC, []string{"desktop", "computer", "all-in-one", "workstation", "cpu", "tower", "pc"}},
	{constants.DeviceAC, []string{"air conditioner", "air-conditioner", "split ac", "window ac", "inverter ac"}},
	{constants.DeviceSmartBoard, []string{"smart board", "smartboard", "interactive panel", "interactive display", "interactive flat panel"}},
	{constants.DeviceProjector, []string{"projector"}},
	{constants.DevicePrinter, []string{"printer", "multifunction", "mfp", "inkjet", "laserjet"}},
	{constants.DeviceScanner, []string{"scanner"}},
	{constants.DeviceUPS, []string{"ups", "inverter", "battery backup"}},
	{constants.DeviceRouter, []string{"router", "access point", "wifi"}},
	{constants.DeviceSwitch, []string{"switch", "poe"}},
	{constants.DeviceServer, []string{"server", "rack"}},
	{constants.DeviceMonitor, []string{"monitor", "display", "lcd", "led", "tft"}},
	{constants.DeviceKeyboard, []string{"keyboard"}},
	{constants.DeviceMouse, []string{"mouse", "mice"}},
	{constants.DeviceWebcam, []string{"webcam", "web camera", "camera"}},
	{constants.DeviceHeadset, []string{"headset", "headphone", "earphone"}},
}

func lookup[T ~string](table []keywordSet[T], description string, fallback T) T {
	d := strings.ToLower(description)
	if strings.TrimSpace(d) == "" {
		return fallback
	}
	for _, set := range table {
		for _, kw := range set.keywords {
			if strings.Contains(d, kw) {
				return set.label
			}
		}
	}
	return fallback
}

// Classify maps an item description to its asset category, "other" when no
// keyword matches.
func Classify(description string) string {
	return string(lookup(categoryKeywords, description, constants.Other))
}

// DetectDeviceType maps an item description to its lab device type, "Other"
// when no keyword matches.
func DetectDeviceType(description string) string {
	return string(lookup(deviceTypeKeywords, description, constants.DeviceOther))
}

// hasCategoryKeyword reports whether any category keyword occurs in s.
func hasCategoryKeyword(s string) bool {
	return Classify(s) != string(constants.Other)
}
