package models

// Topology scope names. Each scope maps 1:1 to one topology collection and
// to one bulk-replace commit task.
const (
	ScopeOperationalPoints = "operational-points"
	ScopeSectionsOfLine    = "sections-of-line"
	ScopePersonnelSites    = "personnel-sites"
	ScopeReplacementStops  = "replacement-stops"
	ScopeReplacementRoutes = "replacement-routes"
	ScopeReplacementEdges  = "replacement-edges"
	ScopeStopLinks         = "op-replacement-stop-links"
	ScopeTransferEdges     = "transfer-edges"
)

// TopologyScopes lists all scopes in persistence order.
var TopologyScopes = []string{
	ScopeOperationalPoints,
	ScopeSectionsOfLine,
	ScopePersonnelSites,
	ScopeReplacementStops,
	ScopeReplacementRoutes,
	ScopeReplacementEdges,
	ScopeStopLinks,
	ScopeTransferEdges,
}

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OperationalPoint is a station, junction or other operational location.
// Both OpID and UniqueOpID are globally unique; UniqueOpID is additionally
// stored by value in five dependent collections (see the topology package
// relink operation).
type OperationalPoint struct {
	OpID        string   `json:"opId"`
	UniqueOpID  string   `json:"uniqueOpId"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode,omitempty"`
	OpType      string   `json:"opType,omitempty"`
	Position    Position `json:"position"`
}

// SectionOfLine connects two operational points. Endpoints must differ.
type SectionOfLine struct {
	SolID           string  `json:"solId"`
	StartUniqueOpID string  `json:"startUniqueOpId"`
	EndUniqueOpID   string  `json:"endUniqueOpId"`
	LengthKm        float64 `json:"lengthKm,omitempty"`
	Nature          string  `json:"nature,omitempty"`
}

// PersonnelSite is a crew facility, optionally anchored to an operational point.
type PersonnelSite struct {
	SiteID           string   `json:"siteId"`
	SiteType         string   `json:"siteType,omitempty"`
	Name             string   `json:"name"`
	UniqueOpID       string   `json:"uniqueOpId,omitempty"`
	Position         Position `json:"position"`
	OpeningHoursJSON string   `json:"openingHoursJson,omitempty"`
}

// ReplacementStop is a road-side stop for replacement transport.
type ReplacementStop struct {
	ReplacementStopID string   `json:"replacementStopId"`
	Name              string   `json:"name"`
	StopCode          string   `json:"stopCode,omitempty"`
	NearestUniqueOpID string   `json:"nearestUniqueOpId,omitempty"`
	Position          Position `json:"position"`
}

// ReplacementRoute is a named replacement-transport route.
type ReplacementRoute struct {
	ReplacementRouteID string `json:"replacementRouteId"`
	Name               string `json:"name"`
	Operator           string `json:"operator,omitempty"`
}

// ReplacementEdge is one leg of a replacement route. (ReplacementRouteID,
// Seq) is unique among the edges of a route.
type ReplacementEdge struct {
	ReplacementEdgeID  string `json:"replacementEdgeId"`
	ReplacementRouteID string `json:"replacementRouteId"`
	FromStopID         string `json:"fromStopId"`
	ToStopID           string `json:"toStopId"`
	Seq                int    `json:"seq"`
	AvgDurationSec     int    `json:"avgDurationSec,omitempty"`
	DistanceM          int    `json:"distanceM,omitempty"`
}

// OpReplacementStopLink cross-links an operational point with a replacement
// stop. The (UniqueOpID, ReplacementStopID) pair is unique.
type OpReplacementStopLink struct {
	LinkID            string `json:"linkId"`
	UniqueOpID        string `json:"uniqueOpId"`
	ReplacementStopID string `json:"replacementStopId"`
	RelationType      string `json:"relationType,omitempty"`
	WalkingTimeSec    int    `json:"walkingTimeSec,omitempty"`
	DistanceM         int    `json:"distanceM,omitempty"`
}

// Transfer node kinds.
const (
	TransferNodeOP              = "OP"
	TransferNodePersonnelSite   = "PERSONNEL_SITE"
	TransferNodeReplacementStop = "REPLACEMENT_STOP"
)

// TransferNode is a weak by-value reference to an operational point,
// personnel site or replacement stop.
type TransferNode struct {
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

// TransferEdge is a walking/shuttle connection between two transfer nodes.
// An edge never connects a node to itself.
type TransferEdge struct {
	TransferID     string       `json:"transferId"`
	From           TransferNode `json:"from"`
	To             TransferNode `json:"to"`
	Mode           string       `json:"mode,omitempty"`
	AvgDurationSec int          `json:"avgDurationSec,omitempty"`
	DistanceM      int          `json:"distanceM,omitempty"`
	Bidirectional  bool         `json:"bidirectional,omitempty"`
}

// TopologyState holds the 8 topology collections. The canonical copy lives
// in the resource store; each mutating request works on its own deep copy.
type TopologyState struct {
	OperationalPoints []OperationalPoint      `json:"operationalPoints"`
	SectionsOfLine    []SectionOfLine         `json:"sectionsOfLine"`
	PersonnelSites    []PersonnelSite         `json:"personnelSites"`
	ReplacementStops  []ReplacementStop       `json:"replacementStops"`
	ReplacementRoutes []ReplacementRoute      `json:"replacementRoutes"`
	ReplacementEdges  []ReplacementEdge       `json:"replacementEdges"`
	StopLinks         []OpReplacementStopLink `json:"stopLinks"`
	TransferEdges     []TransferEdge          `json:"transferEdges"`
}

// Clone returns a deep copy of the topology state.
func (t *TopologyState) Clone() *TopologyState {
	if t == nil {
		return &TopologyState{}
	}
	return &TopologyState{
		OperationalPoints: append([]OperationalPoint(nil), t.OperationalPoints...),
		SectionsOfLine:    append([]SectionOfLine(nil), t.SectionsOfLine...),
		PersonnelSites:    append([]PersonnelSite(nil), t.PersonnelSites...),
		ReplacementStops:  append([]ReplacementStop(nil), t.ReplacementStops...),
		ReplacementRoutes: append([]ReplacementRoute(nil), t.ReplacementRoutes...),
		ReplacementEdges:  append([]ReplacementEdge(nil), t.ReplacementEdges...),
		StopLinks:         append([]OpReplacementStopLink(nil), t.StopLinks...),
		TransferEdges:     append([]TransferEdge(nil), t.TransferEdges...),
	}
}

// Items returns the collection for a scope as a generic value, in the shape
// the bulk-replace commit task carries.
func (t *TopologyState) Items(scope string) any {
	switch scope {
	case ScopeOperationalPoints:
		return t.OperationalPoints
	case ScopeSectionsOfLine:
		return t.SectionsOfLine
	case ScopePersonnelSites:
		return t.PersonnelSites
	case ScopeReplacementStops:
		return t.ReplacementStops
	case ScopeReplacementRoutes:
		return t.ReplacementRoutes
	case ScopeReplacementEdges:
		return t.ReplacementEdges
	case ScopeStopLinks:
		return t.StopLinks
	case ScopeTransferEdges:
		return t.TransferEdges
	}
	return nil
}
