// Package records defines the typed connection records and central host
// summary that feed graph construction.
package records

import (
	"fmt"
	"strconv"
	"strings"
)

// CentralHost is the fixed identity of the observed host.
const CentralHost = "hostA"

// Direction is traffic flow relative to the central host.
type Direction string

const (
	DirectionToClient Direction = "ToClient"
	DirectionToHost   Direction = "ToHost"
	DirectionBoth     Direction = "Both"
)

// ParseDirection converts the raw feed value into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionToClient, DirectionToHost, DirectionBoth:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidRow, s)
}

// Scope tells whether a peer is inside the monitored network.
type Scope string

const (
	ScopeInternal Scope = "Internal"
	ScopeExternal Scope = "External"
)

// ParseScope converts the raw feed value into a Scope. An empty value is
// treated as Internal.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", string(ScopeInternal):
		return ScopeInternal, nil
	case string(ScopeExternal):
		return ScopeExternal, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidRow, s)
}

// Attribute is one labelled value shown in a tooltip or detail view.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Detail is the payload a node resolves to when selected: either a
// *ConnectionRecord or a *HostSummary.
type Detail interface {
	Host() string
	Malicious() bool
	Attributes() []Attribute
}

// ConnectionRecord is one observed peer connection.
type ConnectionRecord struct {
	PeerHost    string    `json:"peerHost"`
	Protocol    string    `json:"protocol"`
	Port        string    `json:"port"`
	ISPName     string    `json:"ispName"`
	ISPOrg      string    `json:"ispOrg"`
	ISPASN      string    `json:"ispAsn"`
	ByteCount   float64   `json:"byteCount"`
	IsMalicious bool      `json:"isMalicious"`
	Direction   Direction `json:"direction"`
	Scope       Scope     `json:"scope"`
}

func (r *ConnectionRecord) Host() string    { return r.PeerHost }
func (r *ConnectionRecord) Malicious() bool { return r.IsMalicious }

// Attributes returns the record fields in tooltip order.
func (r *ConnectionRecord) Attributes() []Attribute {
	return []Attribute{
		{Name: "Resolved Host", Value: r.PeerHost},
		{Name: "Protocol", Value: r.Protocol},
		{Name: "Port", Value: r.Port},
		{Name: "ISP", Value: r.ISPName},
		{Name: "ISP Org", Value: r.ISPOrg},
		{Name: "ISP No", Value: r.ISPASN},
		{Name: "Octets", Value: FormatBytes(r.ByteCount)},
	}
}

// HostSummary is the central host's own metadata.
type HostSummary struct {
	Name         string `json:"host,omitempty"`
	AppID        string `json:"appId"`
	GeoLocation  string `json:"geoLocation"`
	HostGroup    string `json:"hostGroupB"`
	ServerOctets string `json:"serverOctets"`
	ServerPort   string `json:"serverPort"`
	IsMalicious  bool   `json:"isHostAMalicious"`
}

func (s *HostSummary) Host() string    { return CentralHost }
func (s *HostSummary) Malicious() bool { return s.IsMalicious }

// Attributes returns the summary fields in tooltip order.
func (s *HostSummary) Attributes() []Attribute {
	return []Attribute{
		{Name: "Application", Value: s.AppID},
		{Name: "Geo Location", Value: s.GeoLocation},
		{Name: "Host Group", Value: s.HostGroup},
		{Name: "Volume Total", Value: s.ServerOctets},
		{Name: "Server Port", Value: s.ServerPort},
	}
}

// Tooltip renders a detail as "Name: Value" lines.
func Tooltip(d Detail) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	for i, a := range d.Attributes() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(a.Name)
		b.WriteString(": ")
		b.WriteString(a.Value)
	}
	return b.String()
}

// FormatBytes prints a byte count without exponent or trailing zeros.
func FormatBytes(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}
