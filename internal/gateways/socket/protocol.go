package socket

import "encoding/json"

// Every frame in either direction is {"event": ..., "data": ...}.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type activateRestPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type getLogsPayload struct {
	Limit int `json:"limit"`
}

type restDeniedPayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func encode(event string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}
