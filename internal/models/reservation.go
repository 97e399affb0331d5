package models

import "strings"

// TypeCode identifies the kind of facility a reservation is for.
type TypeCode string

const (
	TypeCubicle    TypeCode = "CUBICULO"
	TypeLaboratory TypeCode = "LABORATORIO"
	TypeProjector  TypeCode = "PROYECTOR"
	TypeRestaurant TypeCode = "RESTAURANTE"
)

// Reservation statuses as returned by the API.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCanceled  = "canceled"
	StatusCompleted = "completed"
)

// Reservation mirrors a reservation record from the listing API.
// Date and time fields are kept as the raw strings the server sent;
// the window package owns their interpretation.
type Reservation struct {
	Code         string   `json:"codigo"`
	Type         TypeCode `json:"tipo"`
	Date         string   `json:"fecha"`
	StartTime    string   `json:"hora_inicio"`
	EndTime      string   `json:"hora_fin"`
	StudentID    string   `json:"matricula"`
	FacilityName string   `json:"recurso"`
	Status       string   `json:"estado"`
	CreatedAt    string   `json:"creado,omitempty"`
}

// NormalizedType returns the type code uppercased and trimmed, so that
// comparisons tolerate casing differences between API versions.
func (r *Reservation) NormalizedType() TypeCode {
	return TypeCode(strings.ToUpper(strings.TrimSpace(string(r.Type))))
}

// IsRestaurant reports whether this is a restaurant-space reservation.
// Restaurant records are all-day bookings and get a fixed end of day
// instead of the fetched end-time field.
func (r *Reservation) IsRestaurant() bool {
	return r.NormalizedType() == TypeRestaurant
}

// IsActiveStatus reports whether the record is still relevant for
// countdown display (canceled and completed rows are not ticked).
func (r *Reservation) IsActiveStatus() bool {
	switch r.Status {
	case StatusCanceled, StatusCompleted:
		return false
	}
	return true
}

// Cubicle is a study cubicle available for reservation.
type Cubicle struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	Capacity int    `json:"capacidad"`
	Floor    string `json:"piso"`
	Active   bool   `json:"activo"`
}

// Laboratory is a bookable laboratory room.
type Laboratory struct {
	ID        int64  `json:"id"`
	Name      string `json:"nombre"`
	Building  string `json:"edificio"`
	Capacity  int    `json:"capacidad"`
	Equipment string `json:"equipamiento,omitempty"`
	Active    bool   `json:"activo"`
}

// Projector is a bookable projector unit.
type Projector struct {
	ID        int64  `json:"id"`
	Name      string `json:"nombre"`
	Model     string `json:"modelo,omitempty"`
	Available bool   `json:"disponible"`
}

// RestaurantSpace is a bookable restaurant or meeting space.
type RestaurantSpace struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	Capacity int    `json:"capacidad"`
	Active   bool   `json:"activo"`
}
