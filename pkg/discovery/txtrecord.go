package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeDiscoverableTXT creates TXT records for the discoverable service.
func EncodeDiscoverableTXT(info *Info) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyDeviceID] = info.DeviceID
	txt[TXTKeyDeviceType] = info.DeviceType
	txt[TXTKeyConfigured] = strconv.FormatBool(info.Configured)
	txt[TXTKeyFirmware] = info.Firmware

	// Optional fields
	if info.DeviceName != "" {
		txt[TXTKeyDeviceName] = info.DeviceName
	}

	return txt
}

// DecodeDiscoverableTXT parses TXT records from the discoverable service.
func DecodeDiscoverableTXT(txt TXTRecordMap) (*Info, error) {
	info := &Info{}

	var ok bool
	info.DeviceID, ok = txt[TXTKeyDeviceID]
	if !ok || info.DeviceID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceID)
	}

	info.DeviceType, ok = txt[TXTKeyDeviceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceType)
	}

	cfgStr, ok := txt[TXTKeyConfigured]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyConfigured)
	}
	configured, err := strconv.ParseBool(cfgStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyConfigured, cfgStr)
	}
	info.Configured = configured

	info.Firmware, ok = txt[TXTKeyFirmware]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyFirmware)
	}

	// Optional fields
	info.DeviceName = txt[TXTKeyDeviceName]

	return info, nil
}

// EncodeOperationalTXT creates TXT records for the operational service.
func EncodeOperationalTXT(info *Info) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyDeviceID] = info.DeviceID
	txt[TXTKeyDeviceType] = info.DeviceType

	// Optional fields
	if info.Firmware != "" {
		txt[TXTKeyFirmware] = info.Firmware
	}
	if info.DeviceName != "" {
		txt[TXTKeyDeviceName] = info.DeviceName
	}

	return txt
}

// DecodeOperationalTXT parses TXT records from the operational service.
func DecodeOperationalTXT(txt TXTRecordMap) (*Info, error) {
	info := &Info{}

	var ok bool
	info.DeviceID, ok = txt[TXTKeyDeviceID]
	if !ok || info.DeviceID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceID)
	}

	info.DeviceType, ok = txt[TXTKeyDeviceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceType)
	}

	// Optional fields
	info.Firmware = txt[TXTKeyFirmware]
	info.DeviceName = txt[TXTKeyDeviceName]

	return info, nil
}

// TXTRecordsToStrings converts a TXT record map to "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXT record map.
// Entries without a '=' are treated as boolean flags with an empty value.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(strs))
	for _, s := range strs {
		key, value, found := strings.Cut(s, "=")
		if !found {
			txt[s] = ""
			continue
		}
		txt[key] = value
	}
	return txt
}
