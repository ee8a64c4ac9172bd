package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-eyeball/pkg/validation"
)

// Text is a JSON value that may arrive as either a string or a number.
type Text string

// UnmarshalJSON accepts strings, numbers and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// Row is one raw entry of the connections feed.
type Row struct {
	Server        string  `json:"Server" validate:"required,max=253"`
	Service       string  `json:"Service"`
	Port          Text    `json:"Port"`
	Provider      string  `json:"Provider"`
	Organization  string  `json:"Organization"`
	ASN           Text    `json:"ASN"`
	Bytes         float64 `json:"Bytes" validate:"gte=0"`
	IsMalicious   string  `json:"IsMalicious" validate:"flag"`
	DataDirection string  `json:"DataDirection" validate:"required,oneof=ToClient ToHost Both"`
	Scope         string  `json:"Scope" validate:"omitempty,oneof=Internal External"`
}

// Record validates the row and converts it to a ConnectionRecord.
func (r Row) Record() (ConnectionRecord, error) {
	if err := validation.Struct(&r); err != nil {
		return ConnectionRecord{}, fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}
	dir, err := ParseDirection(r.DataDirection)
	if err != nil {
		return ConnectionRecord{}, err
	}
	scope, err := ParseScope(r.Scope)
	if err != nil {
		return ConnectionRecord{}, err
	}
	return ConnectionRecord{
		PeerHost:    r.Server,
		Protocol:    r.Service,
		Port:        string(r.Port),
		ISPName:     r.Provider,
		ISPOrg:      r.Organization,
		ISPASN:      string(r.ASN),
		ByteCount:   r.Bytes,
		IsMalicious: r.IsMalicious == "true",
		Direction:   dir,
		Scope:       scope,
	}, nil
}

// FromRows converts rows to records, skipping and reporting rejected rows.
// A nil input yields a nil result so callers can tell "no data" from
// "empty data".
func FromRows(rows []Row) ([]ConnectionRecord, []error) {
	if rows == nil {
		return nil, nil
	}
	out := make([]ConnectionRecord, 0, len(rows))
	var rejected []error
	for i, row := range rows {
		rec, err := row.Record()
		if err != nil {
			rejected = append(rejected, &RowError{Index: i, Err: err})
			continue
		}
		out = append(out, rec)
	}
	return out, rejected
}

// SampleDocument is the connections feed document.
type SampleDocument struct {
	ColumnData []Row `json:"ColumnData"`
}

// DecodeSample reads a connections feed document.
func DecodeSample(r io.Reader) (*SampleDocument, error) {
	var doc SampleDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode connections document: %w", err)
	}
	if err := validation.ValidateRowCount(len(doc.ColumnData)); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ColumnDetail is one entry of the central host request document. The
// display name carries the value.
type ColumnDetail struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// RequestDocument is the central host request document.
type RequestDocument struct {
	ColumnDetails []ColumnDetail `json:"columnDetails"`
}

// SummaryColumns lists the column ids that make up a HostSummary.
var SummaryColumns = []string{
	"host", "appId", "serverPort", "serverOctets", "hostGroupB", "geoLocation", "isHostAMalicious",
}

// DecodeRequest reads a central host request document.
func DecodeRequest(r io.Reader) (*RequestDocument, error) {
	var doc RequestDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode request document: %w", err)
	}
	return &doc, nil
}

// Summary folds the relevant columns into a HostSummary. Unknown ids are
// ignored; the last occurrence of a repeated id wins.
func (d *RequestDocument) Summary() HostSummary {
	var s HostSummary
	if d == nil {
		return s
	}
	for _, c := range d.ColumnDetails {
		switch c.ID {
		case "host":
			s.Name = c.DisplayName
		case "appId":
			s.AppID = c.DisplayName
		case "serverPort":
			s.ServerPort = c.DisplayName
		case "serverOctets":
			s.ServerOctets = c.DisplayName
		case "hostGroupB":
			s.HostGroup = c.DisplayName
		case "geoLocation":
			s.GeoLocation = c.DisplayName
		case "isHostAMalicious":
			s.IsMalicious = c.DisplayName == "true"
		}
	}
	return s
}

// SummaryFromMap builds a HostSummary from a string-keyed mapping.
func SummaryFromMap(m map[string]string) HostSummary {
	doc := RequestDocument{}
	for _, id := range SummaryColumns {
		if v, ok := m[id]; ok {
			doc.ColumnDetails = append(doc.ColumnDetails, ColumnDetail{ID: id, DisplayName: v})
		}
	}
	return doc.Summary()
}
