package ingest

import "strings"

// NotAvailable is the sentinel for absent client or license names.
const NotAvailable = "N/A"

// labelSeparator splits the combined "client-license" cell.
const labelSeparator = "-"

// SplitLabel separates a combined client/license label at the first
// separator. The license side keeps the separator as a visual marker.
// Either side falls back to the "N/A" sentinel when empty after trimming.
func SplitLabel(raw string) (clientName, licenseName string) {
	if raw == "" {
		return NotAvailable, NotAvailable
	}

	idx := strings.Index(raw, labelSeparator)
	if idx == -1 {
		clientName = strings.TrimSpace(raw)
		if clientName == "" {
			clientName = NotAvailable
		}
		return clientName, NotAvailable
	}

	clientName = strings.TrimSpace(raw[:idx])
	licenseName = strings.TrimSpace(raw[idx:])
	if clientName == "" {
		clientName = NotAvailable
	}
	if licenseName == "" {
		licenseName = NotAvailable
	}
	return clientName, licenseName
}
