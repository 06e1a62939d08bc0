package main

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	typeString = "string"
	typeInt    = "int"
	typeFloat  = "float"
	typeBool   = "bool"
	typeList   = "list"
	typeSet    = "set"
	typeMap    = "map"
)

// parseValue converts a command-line argument into a typed value. Lists and
// sets are comma separated; maps are comma separated key=value pairs.
func parseValue(kind, raw string) (any, error) {
	switch kind {
	case typeString, "":
		return raw, nil
	case typeInt:
		return strconv.Atoi(raw)
	case typeFloat:
		return strconv.ParseFloat(raw, 64)
	case typeBool:
		return strconv.ParseBool(raw)
	case typeList:
		return splitList(raw), nil
	case typeSet:
		set := make(map[string]struct{})
		for _, item := range splitList(raw) {
			set[item] = struct{}{}
		}
		return set, nil
	case typeMap:
		m := make(map[string]string)
		for _, pair := range splitList(raw) {
			k, v, ok := strings.Cut(pair, "=")
			if !ok || k == "" {
				return nil, fmt.Errorf("map entry %q is not key=value", pair)
			}
			m[k] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown value type %q", kind)
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
