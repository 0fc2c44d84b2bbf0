package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeHostTXT creates the TXT records for a host link.
func EncodeHostTXT(info *HostInfo) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyUID:     info.UID.String(),
		TXTKeyModel:   fmt.Sprintf("%04x", info.ModelID),
		TXTKeyVersion: info.Version,
	}
	if info.ModelName != "" {
		txt[TXTKeyName] = info.ModelName
	}
	return txt
}

// DecodeHostTXT parses host link TXT records. The instance name and port are
// not part of the TXT data and are left zero.
func DecodeHostTXT(txt TXTRecordMap) (*HostInfo, error) {
	info := &HostInfo{}

	uidStr, ok := txt[TXTKeyUID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyUID)
	}
	uid, err := rdm.ParseUID(uidStr)
	if err != nil {
		return nil, fmt.Errorf("%w: uid %q: %w", ErrInvalidTXTRecord, uidStr, err)
	}
	info.UID = uid

	modelStr, ok := txt[TXTKeyModel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyModel)
	}
	id, err := strconv.ParseUint(modelStr, 16, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: model %q", ErrInvalidTXTRecord, modelStr)
	}
	info.ModelID = uint16(id)

	info.Version, ok = txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}

	info.ModelName = txt[TXTKeyName]
	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings, sorted
// by key.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if !found && k == "" {
			continue
		}
		txt[k] = v
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
