package violation

import "errors"

var (
	// ErrRecordValidation indicates a record is missing required fields.
	ErrRecordValidation = errors.New("violation record validation failed")

	// ErrStorageUnavailable indicates the storage backend rejected the write.
	ErrStorageUnavailable = errors.New("violation storage unavailable")

	// ErrBufferFull indicates the async buffer overflowed and the write
	// degraded to a synchronous store.
	ErrBufferFull = errors.New("violation async buffer full")
)
