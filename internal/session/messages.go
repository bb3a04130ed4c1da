package session

import (
	"fmt"

	"github.com/ytget/ytgrab/internal/model"
)

// User-facing texts
const (
	MsgEmptyInput    = "Please enter a YouTube URL"
	MsgInvalidURL    = "Invalid YouTube URL. Please check and try again."
	MsgResolving     = "Fetching video information..."
	MsgVideoFound    = "Video found! Choose download option below."
	MsgResolveFailed = "Failed to connect to server. Make sure the backend is running."

	msgFetchingFormat    = "Downloading %s... This may take a while."
	msgSucceededFormat   = "%s downloaded successfully!"
	msgFetchFailedFormat = "Failed to download %s. Please try again."
)

// FetchingMessage is shown while the kind rendition is downloading
func FetchingMessage(kind model.Kind) string {
	return fmt.Sprintf(msgFetchingFormat, kind)
}

// SucceededMessage names the kind that was saved
func SucceededMessage(kind model.Kind) string {
	return fmt.Sprintf(msgSucceededFormat, capitalize(kind.String()))
}

// FetchFailedMessage names the kind that failed
func FetchFailedMessage(kind model.Kind) string {
	return fmt.Sprintf(msgFetchFailedFormat, kind)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

func info(text string) model.Message {
	return model.Message{Kind: model.MessageInfo, Text: text}
}

func failure(text string) model.Message {
	return model.Message{Kind: model.MessageError, Text: text}
}
