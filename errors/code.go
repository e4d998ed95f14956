package errors

// ErrorCode identifies an application error class
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001

	ErrorCode_NO_INPUT_TEXT           ErrorCode = 2000
	ErrorCode_TRANSCRIPTION_FAILED    ErrorCode = 2001
	ErrorCode_PROCESSING_FAILED       ErrorCode = 2002
	ErrorCode_PROVIDER_UNAVAILABLE    ErrorCode = 2100
	ErrorCode_PROVIDER_QUOTA_EXCEEDED ErrorCode = 2101
	ErrorCode_CACHE_FAILED            ErrorCode = 2200
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                 "OK",
	ErrorCode_INTERNAL:                "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:        "INVALID_ARGUMENT",
	ErrorCode_NO_INPUT_TEXT:           "NO_INPUT_TEXT",
	ErrorCode_TRANSCRIPTION_FAILED:    "TRANSCRIPTION_FAILED",
	ErrorCode_PROCESSING_FAILED:       "PROCESSING_FAILED",
	ErrorCode_PROVIDER_UNAVAILABLE:    "PROVIDER_UNAVAILABLE",
	ErrorCode_PROVIDER_QUOTA_EXCEEDED: "PROVIDER_QUOTA_EXCEEDED",
	ErrorCode_CACHE_FAILED:            "CACHE_FAILED",
}

// String returns the symbolic name of the error code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
