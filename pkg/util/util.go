package util

import "strings"

func ContainsString(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

func RemoveString(slice []string, s string) (result []string) {
	for _, item := range slice {
		if item == s {
			continue
		}
		result = append(result, item)
	}
	return
}

// FlagName converts a schema property name to its CLI flag spelling.
func FlagName(property string) string {
	return strings.ReplaceAll(property, "_", "-")
}

// PropertyName is the inverse of FlagName.
func PropertyName(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}
