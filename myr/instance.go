package myr

import (
	"sort"

	"github.com/pkg/errors"
)

func createInstance(s *initState) error {
	if s.cfg.Validation {
		if validationAvailable(s) {
			s.validation = true
			s.log.Log("validation layer available, enabling")
		} else {
			s.log.Warn("validation requested but %s is not available, continuing without it", validationLayer)
		}
	}

	var windowExtensions []string
	if s.window != nil {
		exts, err := s.window.RequiredInstanceExtensions()
		if err != nil {
			return errors.Wrap(err, "window instance extensions")
		}
		windowExtensions = exts
	}

	info := InstanceInfo{
		AppName:       s.cfg.AppName,
		AppVersion:    s.cfg.AppVersion,
		EngineName:    s.cfg.EngineName,
		EngineVersion: s.cfg.EngineVersion,
		APIVersion:    s.cfg.VulkanVersion,
	}
	if s.validation {
		info.Extensions = union(baseInstanceExtensions, s.cfg.InstanceExtensions, windowExtensions, []string{debugReportExt})
		info.Layers = []string{validationLayer}
		info.DebugCallback = debugLogger(s.log)
	} else {
		info.Extensions = union(baseInstanceExtensions, s.cfg.InstanceExtensions, windowExtensions)
	}

	instance, err := s.entry.CreateInstance(info)
	if err != nil {
		return errors.Wrap(err, "create instance")
	}
	s.instance = instance
	s.log.Log("instance created; layers: %v, extensions: %v", info.Layers, info.Extensions)

	return nil
}

func validationAvailable(s *initState) bool {
	layers, err := s.entry.InstanceLayers()
	if err != nil {
		s.log.Warn("could not list instance layers: %v", err)
		return false
	}
	return inStringSlice(layers, validationLayer)
}

// union merges name sets, dropping empties and duplicates. The result is
// sorted.
func union(sets ...[]string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, set := range sets {
		for _, name := range set {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func inStringSlice(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}
