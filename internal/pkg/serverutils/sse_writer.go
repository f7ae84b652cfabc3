package serverutils

import (
	"bufio"
	"encoding/json"
	"fmt"
)

// SSEWriter emits server-sent event frames. Each content chunk becomes a
// plain data frame, errors and the end-of-stream marker get named events so
// the client can distinguish them from content.
type SSEWriter struct {
	w *bufio.Writer
}

func NewSSEWriter(w *bufio.Writer) *SSEWriter {
	return &SSEWriter{w: w}
}

func (s *SSEWriter) WriteContent(chunk string) error {
	payload, err := json.Marshal(map[string]string{"content": chunk})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *SSEWriter) WriteError(message string) error {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: error\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *SSEWriter) WriteDone(sessionId string) error {
	payload, err := json.Marshal(map[string]string{"sessionId": sessionId})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: done\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return s.w.Flush()
}
