package facilities

// Type classifies a health facility.
type Type string

const (
	TypeHospital   Type = "hospital"
	TypeUBS        Type = "ubs"
	TypeUPA        Type = "upa"
	TypeClinic     Type = "clinic"
	TypeLaboratory Type = "laboratory"
)

// Valid reports whether t is a known facility type.
func (t Type) Valid() bool {
	switch t {
	case TypeHospital, TypeUBS, TypeUPA, TypeClinic, TypeLaboratory:
		return true
	}
	return false
}

// Emergency reports whether facilities of this type take walk-in emergencies.
func (t Type) Emergency() bool {
	return t == TypeHospital || t == TypeUPA
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Facility is one entry of the static directory. DistanceKM is a fixed
// figure; there is no geolocation.
type Facility struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Address     string      `json:"address"`
	Phone       string      `json:"phone"`
	Hours       string      `json:"hours"`
	Specialties []string    `json:"specialties"`
	Public      bool        `json:"is_public"`
	DistanceKM  float64     `json:"distance_km"`
	Location    Coordinates `json:"coordinates"`
}

// Links are the launchable URLs for a facility.
type Links struct {
	Call       string `json:"call"`
	Directions string `json:"directions"`
	Map        string `json:"map"`
}

// Listing is a facility decorated with its links, as served over HTTP.
type Listing struct {
	Facility
	Links Links `json:"links"`
}

// Service is a public emergency phone line.
type Service struct {
	Name        string `json:"name"`
	Number      string `json:"number"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Hours       string `json:"hours"`
	Call        string `json:"call"`
}

// Contacts is the emergency contacts page: national services followed by
// hospital emergency rooms.
type Contacts struct {
	Services  []Service `json:"services"`
	Hospitals []Listing `json:"hospitals"`
}
