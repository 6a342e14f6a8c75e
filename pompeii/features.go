package pompeii

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	uint32_t sType;
	void*    pNext;
	uint32_t dynamicRendering;
} dynamicRenderingFeatures;
*/
import "C"

import "unsafe"

// VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_DYNAMIC_RENDERING_FEATURES
const structureTypeDynamicRenderingFeatures = 1000044003

// newDynamicRenderingFeatures allocates the feature struct in C memory so it
// can sit in a pNext chain. Call free once the device is created.
func newDynamicRenderingFeatures(next unsafe.Pointer) (p unsafe.Pointer, free func()) {
	f := (*C.dynamicRenderingFeatures)(C.calloc(1, C.sizeof_dynamicRenderingFeatures))
	f.sType = structureTypeDynamicRenderingFeatures
	f.pNext = next
	f.dynamicRendering = 1
	return unsafe.Pointer(f), func() { C.free(unsafe.Pointer(f)) }
}

// newDebugKey returns a unique C pointer for use as debug report pUserData.
func newDebugKey() unsafe.Pointer {
	return C.malloc(1)
}

func freeDebugKey(key unsafe.Pointer) {
	C.free(key)
}
