package transit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome is the closed set of results a provider payload can classify into.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAmbiguous
	OutcomeStopNotFound
	OutcomeUpstreamFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeStopNotFound:
		return "stop_not_found"
	case OutcomeUpstreamFailure:
		return "upstream_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

const (
	EndpointOrigin      = "origin"
	EndpointDestination = "destination"
)

// maxCandidates bounds the alternatives carried back for an ambiguous endpoint.
const maxCandidates = 10

const (
	codeAmbiguous     = "-8011"
	codeStopNotFound  = "-3010"
	codeStopNotServed = "-3011"
)

// Classification is the provider-independent verdict for a payload.
// Notices are diagnostics only and must not drive behaviour.
type Classification struct {
	Outcome    Outcome
	Endpoints  []string
	Candidates map[string][]string
	Detail     string
	Notices    []string
}

// ClassifyTrip inspects a trip response before any itinerary is built.
func ClassifyTrip(body []byte) (Classification, error) {
	var payload tripPayload
	if err := decodePayload(body, &payload); err != nil {
		return Classification{}, err
	}
	return classifyTrip(&payload), nil
}

func classifyTrip(payload *tripPayload) Classification {
	if detail, ok := errorDetail(payload.Error); ok {
		return Classification{Outcome: OutcomeUpstreamFailure, Detail: detail}
	}

	result := Classification{Outcome: OutcomeSuccess}
	endpoints := []struct {
		name    string
		payload endpointPayload
	}{
		{EndpointOrigin, payload.Origin},
		{EndpointDestination, payload.Destination},
	}

	var ambiguous []string
	candidates := map[string][]string{}
	for _, ep := range endpoints {
		messages := decodeMessages(ep.payload.Message)
		if hasCode(messages, codeAmbiguous) {
			ambiguous = append(ambiguous, ep.name)
			candidates[ep.name] = candidateNames(ep.payload.Points)
		}
		result.Notices = append(result.Notices, notices(ep.name, messages, codeAmbiguous)...)
	}

	if len(ambiguous) > 0 && len(Sequence(payload.Trips, "trip")) == 0 {
		result.Outcome = OutcomeAmbiguous
		result.Endpoints = ambiguous
		result.Candidates = candidates
	}
	return result
}

// ClassifyStopFinder inspects a stop-finder response.
func ClassifyStopFinder(body []byte) (Classification, error) {
	var payload stopFinderPayload
	if err := decodePayload(body, &payload); err != nil {
		return Classification{}, err
	}
	return classifyStopFinder(&payload), nil
}

func classifyStopFinder(payload *stopFinderPayload) Classification {
	if detail, ok := errorDetail(payload.Error); ok {
		return Classification{Outcome: OutcomeUpstreamFailure, Detail: detail}
	}
	return Classification{
		Outcome: OutcomeSuccess,
		Notices: notices("stopFinder", decodeMessages(payload.StopFinder.Message)),
	}
}

// ClassifyDepartures inspects a departure-monitor response. An unknown stop
// takes precedence over every other signal.
func ClassifyDepartures(body []byte) (Classification, error) {
	var payload departurePayload
	if err := decodePayload(body, &payload); err != nil {
		return Classification{}, err
	}
	return classifyDepartures(&payload), nil
}

func classifyDepartures(payload *departurePayload) Classification {
	messages := decodeMessages(payload.DM.Message)
	if hasCode(messages, codeStopNotFound) || hasCode(messages, codeStopNotServed) {
		return Classification{Outcome: OutcomeStopNotFound}
	}
	if detail, ok := errorDetail(payload.Error); ok {
		return Classification{Outcome: OutcomeUpstreamFailure, Detail: detail}
	}
	return Classification{
		Outcome: OutcomeSuccess,
		Notices: notices("dm", messages),
	}
}

func decodePayload(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("decode provider payload: empty body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func decodeMessages(raw json.RawMessage) []messagePayload {
	messages, _ := decodeEach[messagePayload](Sequence(raw, "message"))
	return messages
}

func (m messagePayload) code() string {
	if m.Name.String() == "code" {
		return m.Value.String()
	}
	return m.Code.String()
}

func hasCode(messages []messagePayload, code string) bool {
	for _, m := range messages {
		if m.code() == code {
			return true
		}
	}
	return false
}

func notices(scope string, messages []messagePayload, skip ...string) []string {
	var out []string
	for _, m := range messages {
		code := m.code()
		if code == "" || code == "0" || containsString(skip, code) {
			continue
		}
		out = append(out, scope+": code "+code)
	}
	return out
}

func candidateNames(points json.RawMessage) []string {
	entries, _ := decodeEach[pointEntry](Sequence(points, "point"))
	names := make([]string, 0, len(entries))
	for _, p := range entries {
		name := p.Name.String()
		if name == "" {
			name = p.Object.String()
		}
		if name == "" || containsString(names, name) {
			continue
		}
		names = append(names, name)
		if len(names) == maxCandidates {
			break
		}
	}
	return names
}

// errorDetail reports a non-empty top-level provider error. The field is
// either a plain string or an object carrying message/text.
func errorDetail(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	switch trimmed[0] {
	case '{':
		var obj struct {
			Message Text `json:"message"`
			Text    Text `json:"text"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", false
		}
		if msg := obj.Message.String(); msg != "" {
			return msg, true
		}
		if msg := obj.Text.String(); msg != "" {
			return msg, true
		}
		return "", false
	case '[':
		return "", false
	default:
		var t Text
		if err := t.UnmarshalJSON(trimmed); err != nil {
			return "", false
		}
		if msg := t.String(); msg != "" && !strings.EqualFold(msg, "false") {
			return msg, true
		}
		return "", false
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
