package grapherror

import "github.com/teranos/graphscope/logger"

// defaultMessages provides user-friendly error messages for each category
var defaultMessages = map[Category]string{
	CategorySchema:    "The input data is missing required columns",
	CategoryFilter:    "Filter could not be applied - showing the full graph instead",
	CategoryScaling:   "This attribute cannot be used for sizing - sizes left unchanged",
	CategoryPalette:   "Too many categories to color - some values keep the default color",
	CategoryWebSocket: "Connection error - attempting to reconnect...",
	CategoryInternal:  "An internal error occurred - please try again",
}

// Notice levels sent to the UI
const (
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is the UI-facing form of a GraphError, attached to render payloads
type Notice struct {
	Level       string `json:"level"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Message     string `json:"message"`
	Detail      string `json:"detail,omitempty"`
}

// ToUIMessage converts the error to a user-friendly message suitable for UI display
func (e *GraphError) ToUIMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.defaultMessageForCategory()
}

// defaultMessageForCategory returns a default user-friendly message for each category
func (e *GraphError) defaultMessageForCategory() string {
	if msg, ok := defaultMessages[e.Category]; ok {
		return msg
	}
	return "An error occurred"
}

// ToNotice formats the error for inclusion in a render payload
func (e *GraphError) ToNotice() Notice {
	n := Notice{
		Level:       e.Level(),
		Category:    string(e.Category),
		Subcategory: e.Subcategory,
		Stage:       e.Stage,
		Message:     e.ToUIMessage(),
	}
	if e.Err != nil {
		n.Detail = e.Err.Error()
	}
	return n
}

// ToLogFields converts error to structured log fields
// This is useful for passing to logger.Warnw()
func (e *GraphError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_category", e.Category,
		"error_message", e.Error(),
		"user_message", e.UserMessage,
	}

	if e.Subcategory != "" {
		fields = append(fields, "error_subcategory", e.Subcategory)
	}
	if e.Stage != "" {
		fields = append(fields, logger.FieldStage, e.Stage)
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}
