package transit

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a provider scalar. The provider sends most values as strings but
// occasionally as numbers or booleans; objects and arrays decode to "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		*t = ""
	default:
		*t = Text(data)
	}
	return nil
}

// String returns the value with surrounding whitespace removed.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Fragment is the provider's split date/time record.
type Fragment struct {
	Year   Text `json:"year"`
	Month  Text `json:"month"`
	Day    Text `json:"day"`
	Hour   Text `json:"hour"`
	Minute Text `json:"minute"`
}

type messagePayload struct {
	Name  Text `json:"name"`
	Value Text `json:"value"`
	Code  Text `json:"code"`
	Text  Text `json:"text"`
}

type endpointPayload struct {
	Message json.RawMessage `json:"message"`
	Points  json.RawMessage `json:"points"`
}

type tripPayload struct {
	Error       json.RawMessage `json:"error"`
	Origin      endpointPayload `json:"origin"`
	Destination endpointPayload `json:"destination"`
	Trips       json.RawMessage `json:"trips"`
}

type tripEntry struct {
	Duration    Text            `json:"duration"`
	Interchange Text            `json:"interchange"`
	Legs        json.RawMessage `json:"legs"`
}

type legEntry struct {
	Points     json.RawMessage `json:"points"`
	StopSeq    json.RawMessage `json:"stopSeq"`
	Mode       modePayload     `json:"mode"`
	Operator   *namedPayload   `json:"operator"`
	TimeMinute Text            `json:"timeMinute"`
	Type       Text            `json:"type"`
}

type modePayload struct {
	Name        Text `json:"name"`
	Number      Text `json:"number"`
	Symbol      Text `json:"symbol"`
	Type        Text `json:"type"`
	Destination Text `json:"destination"`
	Diva        struct {
		Operator Text `json:"operator"`
	} `json:"diva"`
}

type namedPayload struct {
	Name Text `json:"name"`
}

// UnmarshalJSON accepts both {"name": ...} and a bare name.
func (p *namedPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Name Text `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		p.Name = obj.Name
		return nil
	}
	return p.Name.UnmarshalJSON(trimmed)
}

type refPayload struct {
	ID       Text `json:"id"`
	Coords   Text `json:"coords"`
	Place    Text `json:"place"`
	Platform Text `json:"platform"`
	Distance Text `json:"distance"`
}

type pointEntry struct {
	Name      Text       `json:"name"`
	Object    Text       `json:"object"`
	Place     Text       `json:"place"`
	Usage     Text       `json:"usage"`
	Stateless Text       `json:"stateless"`
	AnyType   Text       `json:"anyType"`
	Type      Text       `json:"type"`
	Distance  Text       `json:"distance"`
	DateTime  *Fragment  `json:"dateTime"`
	Ref       refPayload `json:"ref"`
}

type stopFinderPayload struct {
	Error      json.RawMessage `json:"error"`
	StopFinder endpointPayload `json:"stopFinder"`
}

type departurePayload struct {
	Error         json.RawMessage `json:"error"`
	DM            endpointPayload `json:"dm"`
	DepartureList json.RawMessage `json:"departureList"`
}

type departureEntry struct {
	Platform     Text        `json:"platform"`
	PlatformName Text        `json:"platformName"`
	DateTime     *Fragment   `json:"dateTime"`
	RealDateTime *Fragment   `json:"realDateTime"`
	ServingLine  servingLine `json:"servingLine"`
}

type servingLine struct {
	Number    Text `json:"number"`
	Symbol    Text `json:"symbol"`
	Direction Text `json:"direction"`
	Name      Text `json:"name"`
	MotType   Text `json:"motType"`
	Delay     Text `json:"delay"`
}
