package bridge

// Actions the extension can send. The names are part of the wire contract
// with the content script and must not change.
const (
	ActionSaveBookmark      = "saveBookmark"
	ActionGetSelection      = "getSelection"
	ActionHighlightText     = "highlightText"
	ActionCaptureScreenshot = "captureScreenshot"
)

// Message is one request from the browser extension.
type Message struct {
	Action string `json:"action"`

	// saveBookmark
	URL   string   `json:"url,omitempty"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`

	// highlightText / captureScreenshot
	BookmarkID string `json:"bookmark_id,omitempty"`
	Text       string `json:"text,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Response is the uniform reply envelope. Success carries Result; failure
// carries Error. Never both.
type Response struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(result interface{}) Response {
	return Response{Success: true, Result: result}
}

func fail(msg string) Response {
	return Response{Success: false, Error: msg}
}
