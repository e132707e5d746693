// Package gpu resolves graphics adapter names reported by captured devices.
package gpu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jaypipes/pcidb"
)

var (
	pciOnce sync.Once
	pciDB   *pcidb.PCIDB
	pciErr  error
)

// Name looks up the marketing name of a PCI vendor/device pair as reported by
// Unity's SystemInfo.graphicsDeviceVendorID and graphicsDeviceID. It returns
// an empty string when the ids are unknown or no PCI database is available.
func Name(vendorID, deviceID uint32) string {
	return lookupGPUName(FormatPCIID(vendorID), FormatPCIID(deviceID))
}

// FormatPCIID renders a numeric PCI id as four lowercase hex digits.
func FormatPCIID(id uint32) string {
	return fmt.Sprintf("%04x", id)
}

func lookupGPUName(vendorID, deviceID string) string {
	vendorID = normalizePCIID(vendorID)
	deviceID = normalizePCIID(deviceID)
	if vendorID == "" || deviceID == "" {
		return ""
	}

	db := loadPCIDatabase()
	if db == nil {
		return ""
	}

	return productName(db, vendorID, deviceID)
}

func productName(db *pcidb.PCIDB, vendorID, deviceID string) string {
	product, ok := db.Products[vendorID+deviceID]
	if !ok || product == nil {
		return ""
	}
	if product.Name != "" {
		return product.Name
	}
	if vendor, ok := db.Vendors[vendorID]; ok && vendor != nil {
		return vendor.Name
	}
	return ""
}

func loadPCIDatabase() *pcidb.PCIDB {
	pciOnce.Do(func() {
		pciDB, pciErr = pcidb.New()
	})
	if pciErr != nil || pciDB == nil {
		return nil
	}
	return pciDB
}

func normalizePCIID(raw string) string {
	if raw == "" {
		return ""
	}
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "0x")
	value = strings.TrimPrefix(value, "0X")
	if value == "" {
		return ""
	}
	value = strings.ToLower(value)
	if len(value) < 4 {
		value = strings.Repeat("0", 4-len(value)) + value
	}
	return value
}
