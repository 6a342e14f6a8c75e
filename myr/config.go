package myr

import (
	"fmt"
	"strings"
)

const (
	engineName = "MYR"

	validationLayer = "VK_LAYER_KHRONOS_validation"
	debugReportExt  = "VK_EXT_debug_report"
	swapchainExt    = "VK_KHR_swapchain"
)

var (
	baseInstanceExtensions = []string{
		"VK_KHR_get_physical_device_properties2",
	}
	baseDeviceExtensions = []string{
		"VK_KHR_dynamic_rendering",
		"VK_KHR_push_descriptor",
		"VK_KHR_depth_stencil_resolve",
		"VK_KHR_create_renderpass2",
		"VK_KHR_multiview",
		"VK_KHR_maintenance2",
	}
	hostImageCopyExtensions = []string{
		"VK_EXT_host_image_copy",
		"VK_KHR_copy_commands2",
		"VK_KHR_format_feature_flags2",
	}
)

type Version struct {
	Major, Minor, Patch uint32
}

func (v Version) Encode() uint32 {
	return v.Major<<22 | v.Minor<<12 | v.Patch
}

func DecodeVersion(v uint32) Version {
	return Version{
		Major: v >> 22,
		Minor: (v >> 12) & 0x3ff,
		Patch: v & 0xfff,
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

type GPUType uint32

const (
	GPUTypeOther GPUType = iota
	GPUTypeIntegrated
	GPUTypeDiscrete
	GPUTypeVirtual
	GPUTypeCPU
)

func (g GPUType) String() string {
	switch g {
	case GPUTypeOther:
		return "Other"
	case GPUTypeIntegrated:
		return "Integrated"
	case GPUTypeDiscrete:
		return "Discrete"
	case GPUTypeVirtual:
		return "Virtual"
	case GPUTypeCPU:
		return "CPU"
	default:
		return fmt.Sprintf("GPUType(%d)", uint32(g))
	}
}

// DeviceProperties are the static properties a Ranker sees.
type DeviceProperties struct {
	VendorID      uint32
	DeviceID      uint32
	Type          GPUType
	APIVersion    Version
	DriverVersion Version
	Name          string
}

// Ranker scores a device. Negative means the device must not be used.
type Ranker func(DeviceProperties) int

func DefaultRanker(p DeviceProperties) int {
	switch p.Type {
	case GPUTypeDiscrete:
		return 4
	case GPUTypeIntegrated:
		return 3
	case GPUTypeVirtual:
		return 2
	case GPUTypeCPU:
		return 1
	default:
		return 0
	}
}

// MinAPIVersion wraps r and rejects devices older than min.
func MinAPIVersion(min Version, r Ranker) Ranker {
	return func(p DeviceProperties) int {
		if p.APIVersion.Encode() < min.Encode() {
			return -1
		}
		return r(p)
	}
}

type RenderConfig struct {
	AppName       string
	AppVersion    Version
	EngineName    string
	EngineVersion Version
	VulkanVersion Version

	// Validation requests the Khronos validation layer and a debug reporter.
	Validation           bool
	AnisotropicFiltering bool
	HostImageCopy        bool
	NoTransferQueue      bool
	NoComputeQueue       bool

	InstanceExtensions []string
	DeviceExtensions   []string

	Ranker Ranker
}

func DefaultConfig(appName string) RenderConfig {
	return RenderConfig{
		AppName:       appName,
		AppVersion:    Version{1, 0, 0},
		EngineName:    engineName,
		EngineVersion: Version{0, 1, 0},
		VulkanVersion: Version{1, 1, 0},
		Ranker:        DefaultRanker,
	}
}

func (c RenderConfig) clone() RenderConfig {
	c.InstanceExtensions = append([]string(nil), c.InstanceExtensions...)
	c.DeviceExtensions = append([]string(nil), c.DeviceExtensions...)
	if c.Ranker == nil {
		c.Ranker = DefaultRanker
	}
	if c.EngineName == "" {
		c.EngineName = engineName
	}
	return c
}

func (c RenderConfig) String() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "%s v%s, vulkan %s", c.AppName, c.AppVersion, c.VulkanVersion)
	if c.Validation {
		b.WriteString(", validation")
	}
	if c.AnisotropicFiltering {
		b.WriteString(", anisotropy")
	}
	if c.HostImageCopy {
		b.WriteString(", host image copy")
	}
	return b.String()
}
