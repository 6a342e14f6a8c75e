// Package pompeii implements the myr driver interfaces on top of vulkan-go.
package pompeii

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/abyssal_drifter/myr"
)

func inStringSlice(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

func vkString(str string) string {
	if len(str) == 0 {
		return "\x00"
	} else if str[len(str)-1] != '\x00' {
		return str + "\x00"
	}
	return str
}

func vkStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	out := make([]string, len(strs))
	for t, s := range strs {
		out[t] = vkString(s)
	}
	return out
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// vkError wraps a failed result so myr.ResultOf can recover the code.
func vkError(result vk.Result, msg string) error {
	return errors.Wrap(myr.Result(result), msg)
}
