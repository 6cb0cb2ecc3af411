package events

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// maxSnippet bounds the raw data kept on a PayloadError
const maxSnippet = 200

// PushEnvelope is the body of a broker push delivery
type PushEnvelope struct {
	Message      *PushMessage `json:"message"`
	Subscription string       `json:"subscription,omitempty"`
}

// PushMessage carries the base64 encoded payload and its delivery metadata
type PushMessage struct {
	Data        *string           `json:"data"`
	MessageID   string            `json:"messageId,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Delivery is a decoded push delivery
type Delivery struct {
	Payload      map[string]any
	MessageID    string
	PublishTime  time.Time
	Attributes   map[string]string
	Subscription string
}

// PayloadError reports a data field that is not base64 encoded UTF-8 JSON.
// Snippet holds at most the first 200 characters of the raw data.
type PayloadError struct {
	Snippet string
	Err     error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%v: %v (data: %q)", ErrInvalidPayloadJSON, e.Err, e.Snippet)
}

// Is matches ErrInvalidPayloadJSON
func (e *PayloadError) Is(target error) bool {
	return target == ErrInvalidPayloadJSON
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Re-exported so callers of the codec need a single import
var (
	ErrMalformedEnvelope  = errors.ErrMalformedEnvelope
	ErrInvalidPayloadJSON = errors.ErrInvalidPayloadJSON
)

// Codec decodes push envelopes. The zero value rejects envelopes without data.
type Codec struct {
	// AllowEmptyData decodes a message without data to an empty payload
	AllowEmptyData bool
}

var defaultCodec Codec

// Decode returns the JSON object carried by a push envelope
func Decode(body []byte) (map[string]any, error) {
	return defaultCodec.Decode(body)
}

// DecodeEnvelope decodes a push envelope with its delivery metadata
func DecodeEnvelope(body []byte) (*Delivery, error) {
	return defaultCodec.DecodeEnvelope(body)
}

func (c Codec) Decode(body []byte) (map[string]any, error) {
	d, err := c.DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	return d.Payload, nil
}

func (c Codec) DecodeEnvelope(body []byte) (*Delivery, error) {
	var env PushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(ErrMalformedEnvelope, err.Error())
	}
	if env.Message == nil {
		return nil, errors.Wrap(ErrMalformedEnvelope, "missing message")
	}

	msg := env.Message
	d := &Delivery{
		MessageID:    msg.MessageID,
		Attributes:   msg.Attributes,
		Subscription: env.Subscription,
	}
	if d.Attributes == nil {
		d.Attributes = map[string]string{}
	}
	if msg.PublishTime != "" {
		if t, err := time.Parse(time.RFC3339Nano, msg.PublishTime); err == nil {
			d.PublishTime = t
		}
	}

	if msg.Data == nil || *msg.Data == "" {
		if !c.AllowEmptyData {
			return nil, errors.Wrap(ErrMalformedEnvelope, "missing message.data")
		}
		d.Payload = map[string]any{}
		return d, nil
	}

	payload, err := decodeData(*msg.Data)
	if err != nil {
		return nil, err
	}
	d.Payload = payload
	return d, nil
}

func decodeData(data string) (map[string]any, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, newPayloadError(data, err)
	}
	if !utf8.Valid(raw) {
		return nil, newPayloadError(data, errors.New("payload is not valid UTF-8"))
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, newPayloadError(data, err)
	}
	if payload == nil {
		return nil, newPayloadError(data, errors.New("payload is not a JSON object"))
	}
	return payload, nil
}

func newPayloadError(data string, err error) *PayloadError {
	snippet := data
	if r := []rune(snippet); len(r) > maxSnippet {
		snippet = string(r[:maxSnippet])
	}
	return &PayloadError{Snippet: snippet, Err: err}
}

// Encode serializes an outbound payload as plain JSON
func Encode(payload any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, errors.Wrap(err, "encode payload")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Wrap builds the push envelope body a broker would deliver for payload
func Wrap(payload []byte, messageID string, publishTime time.Time, attrs map[string]string, subscription string) ([]byte, error) {
	data := base64.StdEncoding.EncodeToString(payload)
	env := PushEnvelope{
		Message: &PushMessage{
			Data:       &data,
			MessageID:  messageID,
			Attributes: attrs,
		},
		Subscription: subscription,
	}
	if !publishTime.IsZero() {
		env.Message.PublishTime = publishTime.UTC().Format(time.RFC3339Nano)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "encode envelope")
	}
	return body, nil
}

// DecodeInto converts a generic payload into a route record.
// Type mismatches are reported as ErrInvalidInput.
func DecodeInto[T any](payload map[string]any) (T, error) {
	var out T

	raw, err := json.Marshal(payload)
	if err != nil {
		return out, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return out, nil
}
