// Package models defines the data types shared across the engine: the
// canonical resource snapshot, the topology collections, action payloads,
// and the preview/clarification records.
package models

// Pool kinds. Every pool belongs to exactly one kind, and each kind has one
// synthetic system pool that collects unassigned members.
const (
	PoolKindVehicle   = "vehicle"
	PoolKindService   = "service"
	PoolKindPersonnel = "personnel"
)

// SystemPoolID returns the fixed id of the synthetic "unassigned" pool for a
// pool kind. System pools can never be renamed or deleted.
func SystemPoolID(kind string) string {
	return "system-unassigned-" + kind
}

// Pool groups vehicles, services or personnel for planning purposes.
type Pool struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	System bool   `json:"system,omitempty"`
}

// Service is a planned transport service.
type Service struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	PoolID string `json:"poolId"`
}

// Person is a member of the planning personnel.
type Person struct {
	ID              string `json:"id"`
	PersonnelNumber string `json:"personnelNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	HomeSiteID      string `json:"homeSiteId,omitempty"`
	PoolID          string `json:"poolId"`
}

// FullName returns the display label used for reference resolution.
func (p Person) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// Vehicle is a single vehicle of the fleet.
type Vehicle struct {
	ID            string `json:"id"`
	VehicleNumber string `json:"vehicleNumber"`
	VehicleTypeID string `json:"vehicleTypeId,omitempty"`
	HomeDepotID   string `json:"homeDepotId,omitempty"`
	PoolID        string `json:"poolId"`
}

// VehicleType describes a class of vehicles.
type VehicleType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
}

// VehicleComposition is an ordered coupling of vehicle types.
type VehicleComposition struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	VehicleTypeIDs []string `json:"vehicleTypeIds"`
}

// HomeDepot is a depot vehicles return to.
type HomeDepot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UniqueOpID string `json:"uniqueOpId,omitempty"`
}

// ResourceSnapshot is one immutable revision of the master-data graph.
// Mutations always go through Clone; a snapshot handed to the engine is
// never edited in place.
type ResourceSnapshot struct {
	Pools               []Pool               `json:"pools"`
	Services            []Service            `json:"services"`
	Personnel           []Person             `json:"personnel"`
	Vehicles            []Vehicle            `json:"vehicles"`
	VehicleTypes        []VehicleType        `json:"vehicleTypes"`
	VehicleCompositions []VehicleComposition `json:"vehicleCompositions"`
	HomeDepots          []HomeDepot          `json:"homeDepots"`
}

// Clone returns a deep copy of the snapshot.
func (s *ResourceSnapshot) Clone() *ResourceSnapshot {
	if s == nil {
		return &ResourceSnapshot{}
	}
	out := &ResourceSnapshot{
		Pools:        append([]Pool(nil), s.Pools...),
		Services:     append([]Service(nil), s.Services...),
		Personnel:    append([]Person(nil), s.Personnel...),
		Vehicles:     append([]Vehicle(nil), s.Vehicles...),
		VehicleTypes: append([]VehicleType(nil), s.VehicleTypes...),
		HomeDepots:   append([]HomeDepot(nil), s.HomeDepots...),
	}
	out.VehicleCompositions = make([]VehicleComposition, len(s.VehicleCompositions))
	for i, c := range s.VehicleCompositions {
		c.VehicleTypeIDs = append([]string(nil), c.VehicleTypeIDs...)
		out.VehicleCompositions[i] = c
	}
	return out
}

// PoolByID returns the pool with the given id, or nil.
func (s *ResourceSnapshot) PoolByID(id string) *Pool {
	for i := range s.Pools {
		if s.Pools[i].ID == id {
			return &s.Pools[i]
		}
	}
	return nil
}

// EnsureSystemPools appends any missing synthetic "unassigned" pools.
// Called by the resource store on replace so every revision carries them.
func (s *ResourceSnapshot) EnsureSystemPools() {
	for _, kind := range []string{PoolKindVehicle, PoolKindService, PoolKindPersonnel} {
		id := SystemPoolID(kind)
		if s.PoolByID(id) == nil {
			s.Pools = append(s.Pools, Pool{ID: id, Kind: kind, Name: "Unassigned", System: true})
		}
	}
}
