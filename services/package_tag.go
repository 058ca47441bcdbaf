package services

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Govind-619/InfuseDesk/models"
)

// IsPackageType reports whether tag marks a package purchase
func IsPackageType(tag string) bool {
	return models.OrderItem{PackageType: tag}.IsPackage()
}

// ParsePackageCount extracts the number of sessions encoded in a package
// type tag. Two spellings are accepted: a number after the last underscore
// ("PACKAGE_10") and a trailing run of digits ("package8").
func ParsePackageCount(tag string) (int, error) {
	tag = strings.TrimSpace(tag)
	if !IsPackageType(tag) {
		return 0, detail(ErrInvalidPackageType, "%q is not a package type", tag)
	}

	count, ok := 0, false
	if idx := strings.LastIndex(tag, "_"); idx >= 0 {
		if n, err := strconv.Atoi(tag[idx+1:]); err == nil {
			count, ok = n, true
		}
	}
	if !ok {
		end := len(tag)
		start := end
		for start > 0 && unicode.IsDigit(rune(tag[start-1])) {
			start--
		}
		if start < end {
			if n, err := strconv.Atoi(tag[start:end]); err == nil {
				count, ok = n, true
			}
		}
	}

	if !ok {
		return 0, detail(ErrInvalidPackageType, "package type %q does not encode a session count", tag)
	}
	if count <= 0 {
		return 0, detail(ErrInvalidPackageType, "package type %q encodes a non-positive session count %d", tag, count)
	}
	return count, nil
}
