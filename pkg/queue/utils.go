package queue

import (
	"fmt"
	"strings"
)

// qualifiedStructName derives the default task name from a payload type,
// e.g. "firmware.SyncPayload". Pointer markers are stripped so value and
// pointer payloads map to the same task name.
func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
