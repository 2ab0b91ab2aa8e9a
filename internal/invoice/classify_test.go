package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"laptop", "Dell Laptop Inspiron", "laptop"},
		{"desktop", "HP Desktop Computer", "computer"},
		{"first declared category wins", "Laptop Computer", "computer"},
		{"monitor before cable", "Monitor with HDMI cable", "monitor"},
		{"case insensitive", "SEAGATE HARD DRIVE 1TB", "storage"},
		{"no keyword", "Office chair", "other"},
		{"empty", "", "other"},
		{"whitespace", "   \t", "other"},
		{"garbage", "|||---", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.description))
		})
	}
}

func TestDetectDeviceType(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"laptop", "Lenovo ThinkPad Laptop", "Laptop"},
		{"desktop", "Acer Veriton Desktop", "PC"},
		{"laptop wins over computer", "Laptop Computer", "Laptop"},
		{"air conditioner", "Voltas Split AC 1.5 Ton", "AC"},
		{"smart board", "Interactive Flat Panel 75 inch", "Smart Board"},
		{"webcam", "Logitech Webcam C270", "Webcam"},
		{"headset", "USB Headset with mic", "Headset"},
		{"no keyword", "Office chair", "Other"},
		{"empty", "", "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDeviceType(tt.description))
		})
	}
}

func TestCategoryAndDeviceTypeAreIndependent(t *testing.T) {
	assert.Equal(t, "computer", Classify("Laptop Computer"))
	assert.Equal(t, "Laptop", DetectDeviceType("Laptop Computer"))
}
