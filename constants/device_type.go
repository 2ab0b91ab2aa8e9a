package constants

// DeviceType is the lab inventory tag for an asset. It is maintained separately
// from Category and the two may disagree for the same item.
type DeviceType string

const (
	DeviceLaptop     DeviceType = "Laptop"
	DevicePC         DeviceType = "PC"
	DeviceAC         DeviceType = "AC"
	DeviceSmartBoard DeviceType = "Smart Board"
	DeviceProjector  DeviceType = "Projector"
	DevicePrinter    DeviceType = "Printer"
	DeviceScanner    DeviceType = "Scanner"
	DeviceUPS        DeviceType = "UPS"
	DeviceRouter     DeviceType = "Router"
	DeviceSwitch     DeviceType = "Switch"
	DeviceServer     DeviceType = "Server"
	DeviceMonitor    DeviceType = "Monitor"
	DeviceKeyboard   DeviceType = "Keyboard"
	DeviceMouse      DeviceType = "Mouse"
	DeviceWebcam     DeviceType = "Webcam"
	DeviceHeadset    DeviceType = "Headset"
	DeviceOther      DeviceType = "Other"
)

var allDeviceTypes = []DeviceType{
	DeviceLaptop,
	DevicePC,
	DeviceAC,
	DeviceSmartBoard,
	DeviceProjector,
	DevicePrinter,
	DeviceScanner,
	DeviceUPS,
	DeviceRouter,
	DeviceSwitch,
	DeviceServer,
	DeviceMonitor,
	DeviceKeyboard,
	DeviceMouse,
	DeviceWebcam,
	DeviceHeadset,
	DeviceOther,
}

func DeviceTypesAsStringSlice() []string {
	result := make([]string, len(allDeviceTypes))
	for i, d := range allDeviceTypes {
		result[i] = string(d)
	}
	return result
}
