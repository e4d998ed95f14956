package transcription

import "context"

// Transcriber converts an audio file on disk into plain transcript text.
// There is no fallback path behind this interface: a failure here is a hard
// failure of the request.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}
