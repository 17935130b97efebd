package render

import (
	"context"
	"encoding/json"
	"net/http"
)

// JSON renders the data payload inside a status envelope.
type JSON struct{}

type envelope struct {
	Data     any      `json:"data"`
	Success  string   `json:"success"`
	Messages []string `json:"messages"`
}

// Render implements Renderer.
func (JSON) Render(_ context.Context, w http.ResponseWriter, res Response) error {
	messages := res.Messages()
	if messages == nil {
		messages = []string{}
	}
	body, err := json.Marshal(envelope{
		Data:     res.Data(),
		Success:  Success(res.StatusCode()),
		Messages: messages,
	})
	if err != nil {
		return err
	}
	writeDownloadHead(w, res, "application/json; charset=utf-8", "json")
	_, err = w.Write(body)
	return err
}
