package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// wireResult is the superset of fields the server may put in a statement
// response. The actual shape depends on the statement and the server version,
// so everything is optional and read optimistically.
type wireResult struct {
	Type          string                   `json:"@type"`
	ErrorCode     int                      `json:"error_code"`
	Message       string                   `json:"message"`
	StatementText string                   `json:"statementText"`
	CommandID     string                   `json:"commandId"`
	CommandStatus *ksqlpipe.CommandStatus  `json:"commandStatus"`
	Queries       []ksqlpipe.RunningQuery  `json:"queries"`
	Properties    json.RawMessage          `json:"properties"`
}

// decodeEnvelope turns a raw /ksql response into an Envelope. The server
// answers a single-statement submission with a one-element JSON array; error
// responses are bare objects. Both shapes are accepted, and a body that fails
// to parse degrades to an envelope carrying only the HTTP status.
func decodeEnvelope(httpStatus int, httpStatusText string, raw []byte) *ksqlpipe.Envelope {
	env := &ksqlpipe.Envelope{
		HTTPStatus:     httpStatus,
		HTTPStatusText: httpStatusText,
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return env
	}

	obj := trimmed
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil || len(items) == 0 {
			return env
		}
		// One statement per request, so the first element is the answer.
		obj = items[0]
	}

	var wire wireResult
	if err := json.Unmarshal(obj, &wire); err != nil {
		return env
	}

	env.ErrorCode = wire.ErrorCode
	env.Message = wire.Message
	env.StatementText = wire.StatementText
	env.CommandID = strings.Trim(wire.CommandID, `"`)
	env.CommandStatus = wire.CommandStatus
	env.Queries = wire.Queries
	env.Properties = decodeProperties(wire.Properties)

	return env
}

// decodeProperties accepts both encodings the server has used for
// LIST PROPERTIES: a flat string map (older servers) and an array of
// {name, value} objects (newer servers). Null values are skipped.
func decodeProperties(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var flat map[string]interface{}
	if err := json.Unmarshal(raw, &flat); err == nil {
		out := make(map[string]string, len(flat))
		for k, v := range flat {
			if v == nil {
				continue
			}
			out[k] = fmt.Sprint(v)
		}
		return out
	}

	var list []struct {
		Name  string      `json:"name"`
		Value interface{} `json:"value"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make(map[string]string, len(list))
		for _, p := range list {
			if p.Name == "" || p.Value == nil {
				continue
			}
			out[p.Name] = fmt.Sprint(p.Value)
		}
		return out
	}

	return nil
}
